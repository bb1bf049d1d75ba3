package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/domain/progress"
)

// ProgressService records weight history and analyzes it.
type ProgressService interface {
	RegisterClient(ctx context.Context, cmd RegisterClientCommand) (*ClientDTO, error)
	GetClient(ctx context.Context, ownerID, clientID uuid.UUID) (*ClientDTO, error)
	RecordEntry(ctx context.Context, cmd RecordEntryCommand) (*ProgressEntryDTO, error)
	ListEntries(ctx context.Context, ownerID, clientID uuid.UUID) ([]ProgressEntryDTO, error)
	// DeleteEntry removes an entry and returns the client with its current
	// weight recomputed.
	DeleteEntry(ctx context.Context, ownerID, entryID uuid.UUID) (*ClientDTO, error)

	Analyze(ctx context.Context, ownerID, clientID uuid.UUID) (*progress.Analysis, error)
	RecommendTemplates(ctx context.Context, ownerID, clientID uuid.UUID) (*RecommendationDTO, error)
}

// RegisterClientCommand creates a client profile.
type RegisterClientCommand struct {
	OwnerID        uuid.UUID
	Name           string
	Email          string
	StartingWeight *float64
	GoalWeight     *float64
}

// RecordEntryCommand records one measurement.
type RecordEntryCommand struct {
	OwnerID  uuid.UUID
	ClientID uuid.UUID
	Date     time.Time
	Weight   float64
	BodyFat  *float64
	Waist    *float64
	Hips     *float64
	Chest    *float64
	Notes    string
}

// ClientDTO is the data transfer object for clients
type ClientDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	StartingWeight *float64  `json:"starting_weight,omitempty"`
	CurrentWeight  *float64  `json:"current_weight,omitempty"`
	GoalWeight     *float64  `json:"goal_weight,omitempty"`
}

// ProgressEntryDTO is one recorded measurement
type ProgressEntryDTO struct {
	ID       uuid.UUID `json:"id"`
	ClientID uuid.UUID `json:"client_id"`
	Date     string    `json:"date"`
	Weight   float64   `json:"weight"`
	BodyFat  *float64  `json:"body_fat,omitempty"`
	Waist    *float64  `json:"waist,omitempty"`
	Hips     *float64  `json:"hips,omitempty"`
	Chest    *float64  `json:"chest,omitempty"`
	Notes    string    `json:"notes,omitempty"`
}

// RecommendationDTO pairs an analysis with the templates it selects.
type RecommendationDTO struct {
	Analysis  *progress.Analysis `json:"analysis"`
	Goal      string             `json:"goal"`
	Standing  progress.Standing  `json:"standing"`
	Templates []TemplateDTO      `json:"templates"`
}
