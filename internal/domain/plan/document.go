package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the two plan shapes.
type Kind string

const (
	KindGenerated  Kind = "generated"
	KindNormalized Kind = "normalized"
)

var (
	ErrUnknownKind  = errors.New("unknown plan kind")
	ErrEmptyVariant = errors.New("plan document carries no plan for its kind")
)

// Document is a plan in either shape. Exactly one of Generated or
// Normalized is set, as selected by Kind.
type Document struct {
	Kind       Kind
	Generated  *GeneratedPlan
	Normalized *NutritionPlan
}

// FromGenerated wraps a generated plan.
func FromGenerated(g *GeneratedPlan) Document {
	return Document{Kind: KindGenerated, Generated: g}
}

// FromNormalized wraps a normalized plan.
func FromNormalized(n *NutritionPlan) Document {
	return Document{Kind: KindNormalized, Normalized: n}
}

type documentJSON struct {
	Kind Kind            `json:"kind"`
	Plan json.RawMessage `json:"plan"`
}

// UnmarshalJSON decodes {"kind": "...", "plan": {...}}. Only generated plans
// travel as JSON; normalized plans are loaded from the record store.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case KindGenerated, "":
		var g GeneratedPlan
		if err := json.Unmarshal(raw.Plan, &g); err != nil {
			return fmt.Errorf("decode generated plan: %w", err)
		}
		*d = FromGenerated(&g)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, raw.Kind)
	}
}

// Header carries the identity assigned when a plan is normalized.
type Header struct {
	OwnerID  uuid.UUID
	ClientID *uuid.UUID
}

// ToNormalized is the single conversion point between the two shapes.
// Meal names become display labels and the producer's name is kept in
// OriginalMealName.
func ToNormalized(doc Document, header Header) (*NutritionPlan, error) {
	switch doc.Kind {
	case KindNormalized:
		if doc.Normalized == nil {
			return nil, ErrEmptyVariant
		}
		return doc.Normalized, nil
	case KindGenerated:
		if doc.Generated == nil {
			return nil, ErrEmptyVariant
		}
		return normalizeGenerated(doc.Generated, header)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, doc.Kind)
	}
}

func normalizeGenerated(g *GeneratedPlan, header Header) (*NutritionPlan, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	out := &NutritionPlan{
		ID:          uuid.New(),
		OwnerID:     header.OwnerID,
		ClientID:    header.ClientID,
		Title:       g.Title,
		Description: g.Description,
		Duration:    g.Duration,
		Goals:       g.NutritionalGoals,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if out.Duration == 0 {
		out.Duration = len(g.Days)
	}

	for _, d := range g.Days {
		day := PlanDay{Day: d.Day, Date: d.Date, Totals: d.Baseline()}
		for i, m := range d.Meals {
			mealType := MealType(strings.ToLower(strings.TrimSpace(m.Type)))
			day.Meals = append(day.Meals, MealSlot{
				ID:               uuid.New(),
				Day:              d.Day,
				Date:             d.Date,
				Type:             mealType,
				Name:             DisplayLabel(string(mealType)),
				OriginalMealName: m.Name,
				Description:      m.Description,
				Nutrition:        MealMacros(m),
				Ingredients:      append([]string(nil), m.Ingredients...),
				OrderIndex:       i,
			})
		}
		out.Days = append(out.Days, day)
	}

	return out, nil
}
