package plan

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Goal tags what a template is designed for.
type Goal string

const (
	GoalWeightLoss  Goal = "weight_loss"
	GoalWeightGain  Goal = "weight_gain"
	GoalMaintenance Goal = "maintenance"
)

var ErrTemplateNameRequired = errors.New("template name is required")

// Template is an owner-scoped reusable plan skeleton.
type Template struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	Goal        Goal
	Days        []Day
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTemplate creates a template.
func NewTemplate(ownerID uuid.UUID, name string, goal Goal, days []Day) (*Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTemplateNameRequired
	}
	now := time.Now()
	return &Template{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Goal:      goal,
		Days:      days,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Mentions lists the template's ingredient mentions in day/meal order.
func (t *Template) Mentions() []Mention {
	var out []Mention
	for _, d := range t.Days {
		out = append(out, mealMentions(d.Meals)...)
	}
	return out
}
