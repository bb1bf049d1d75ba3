// Package progress holds a client's weight history and the numeric analysis
// derived from it.
package progress

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidWeight   = errors.New("weight must be positive")
	ErrDateRequired    = errors.New("entry date is required")
	ErrClientNameEmpty = errors.New("client name is required")
)

// Entry is one dated measurement. Entries are immutable; only deletion is
// allowed.
type Entry struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	Date      time.Time
	Weight    float64
	BodyFat   *float64
	Waist     *float64
	Hips      *float64
	Chest     *float64
	Notes     string
	CreatedAt time.Time
}

// NewEntry validates and creates an entry.
func NewEntry(clientID uuid.UUID, date time.Time, weight float64) (*Entry, error) {
	if weight <= 0 {
		return nil, ErrInvalidWeight
	}
	if date.IsZero() {
		return nil, ErrDateRequired
	}
	return &Entry{
		ID:        uuid.New(),
		ClientID:  clientID,
		Date:      date,
		Weight:    weight,
		CreatedAt: time.Now(),
	}, nil
}

// SortNewestFirst orders entries by date descending, newest first.
func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
}

// Client is an owner-scoped profile.
type Client struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Name           string
	Email          string
	StartingWeight *float64
	CurrentWeight  *float64
	GoalWeight     *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewClient creates a client profile.
func NewClient(ownerID uuid.UUID, name string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrClientNameEmpty
	}
	now := time.Now()
	return &Client{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ProjectCurrentWeight sets the current weight from the newest entry. With no
// entries left it falls back to the starting weight.
func (c *Client) ProjectCurrentWeight(entries []Entry) {
	c.UpdatedAt = time.Now()

	var newest *Entry
	for i := range entries {
		if newest == nil || entries[i].Date.After(newest.Date) {
			newest = &entries[i]
		}
	}
	if newest == nil {
		if c.StartingWeight != nil {
			w := *c.StartingWeight
			c.CurrentWeight = &w
		} else {
			c.CurrentWeight = nil
		}
		return
	}
	w := newest.Weight
	c.CurrentWeight = &w
}
