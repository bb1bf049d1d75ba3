// Package shopping turns plan ingredient mentions into consolidated,
// categorized shopping lists.
package shopping

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrItemNameRequired = errors.New("item name is required")
	ErrItemNotFound     = errors.New("item not found in list")
)

// Status of a shopping list.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Source records what a list was generated from.
type Source struct {
	PlanID     *uuid.UUID
	TemplateID *uuid.UUID
}

// List is a shopping list. TotalItems and CompletedItems are a cache of the
// item set and are refreshed by Recount.
type List struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	ClientID       *uuid.UUID
	Name           string
	Source         Source
	Status         Status
	TotalItems     int
	CompletedItems int
	Items          []Item
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Item is one purchasable line.
type Item struct {
	ID          uuid.UUID
	ListID      uuid.UUID
	Name        string
	Quantity    string
	Unit        string
	Category    Category
	IsPurchased bool
	OrderIndex  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewList creates an empty active list.
func NewList(ownerID uuid.UUID, clientID *uuid.UUID, name string, source Source) *List {
	now := time.Now()
	if strings.TrimSpace(name) == "" {
		name = "Liste de courses"
	}
	return &List{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		ClientID:  clientID,
		Name:      strings.TrimSpace(name),
		Source:    source,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewItem builds an item for the list from an entry.
func NewItem(listID uuid.UUID, e Entry, orderIndex int) (*Item, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return nil, ErrItemNameRequired
	}
	category := e.Category
	if category == "" {
		category = CategoryOther
	}
	now := time.Now()
	return &Item{
		ID:         uuid.New(),
		ListID:     listID,
		Name:       name,
		Quantity:   e.Quantity,
		Unit:       e.Unit,
		Category:   category,
		OrderIndex: orderIndex,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// AppendEntries adds items for entries in order.
func (l *List) AppendEntries(entries []Entry) error {
	for _, e := range entries {
		item, err := NewItem(l.ID, e, len(l.Items))
		if err != nil {
			return err
		}
		l.Items = append(l.Items, *item)
	}
	l.Recount()
	return nil
}

// Recount refreshes the cached totals from items and moves the status
// between active and completed. Archived lists keep their status.
func (l *List) Recount() {
	ApplyCounts(l, countPurchased(l.Items), len(l.Items))
}

// ApplyCounts stores totals computed elsewhere (a database count) and
// derives the status.
func ApplyCounts(l *List, completed, total int) {
	l.TotalItems = total
	l.CompletedItems = completed
	l.UpdatedAt = time.Now()
	if l.Status == StatusArchived {
		return
	}
	if total > 0 && completed == total {
		l.Status = StatusCompleted
	} else {
		l.Status = StatusActive
	}
}

// NextOrderIndex returns the order index for a newly added item.
func (l *List) NextOrderIndex() int {
	next := 0
	for _, it := range l.Items {
		if it.OrderIndex >= next {
			next = it.OrderIndex + 1
		}
	}
	return next
}

func countPurchased(items []Item) int {
	n := 0
	for _, it := range items {
		if it.IsPurchased {
			n++
		}
	}
	return n
}
