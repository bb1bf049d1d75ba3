// Package ingredient contains the global ingredient directory entity and the
// free-text quantity parsing shared by recipes and shopping lists.
package ingredient

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNameRequired is returned when an ingredient is created without a name.
var ErrNameRequired = errors.New("ingredient name is required")

// UnitType is the reference unit an ingredient's nutrition is expressed in.
type UnitType string

const (
	UnitTypeMass   UnitType = "mass"   // per 100 g
	UnitTypeVolume UnitType = "volume" // per 100 ml
	UnitTypeCount  UnitType = "count"  // per piece
)

// Canonical unit tokens.
const (
	UnitGram       = "g"
	UnitMilliliter = "ml"
	UnitPiece      = "piece"
)

// UnitTypeFor maps a unit token onto its field group. Anything that is not
// ml or piece uses the mass group.
func UnitTypeFor(unit string) UnitType {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case UnitMilliliter:
		return UnitTypeVolume
	case UnitPiece:
		return UnitTypeCount
	default:
		return UnitTypeMass
	}
}

// NutritionFacts holds macro figures for one reference amount.
type NutritionFacts struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
}

// Ingredient is a globally shared nutritional reference, unique by name.
// Only the field group matching UnitType is populated.
type Ingredient struct {
	ID        uuid.UUID
	Name      string
	UnitType  UnitType
	Per100g   *NutritionFacts
	Per100ml  *NutritionFacts
	PerPiece  *NutritionFacts
	CreatedAt time.Time
}

// New creates an ingredient whose nutrition lands in the group selected by unit.
func New(name, unit string, facts NutritionFacts) (*Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	i := &Ingredient{
		ID:        uuid.New(),
		Name:      name,
		UnitType:  UnitTypeFor(unit),
		CreatedAt: time.Now(),
	}

	f := facts
	switch i.UnitType {
	case UnitTypeVolume:
		i.Per100ml = &f
	case UnitTypeCount:
		i.PerPiece = &f
	default:
		i.Per100g = &f
	}

	return i, nil
}

// Nutrition returns the populated field group, or zero facts.
func (i *Ingredient) Nutrition() NutritionFacts {
	switch {
	case i.Per100g != nil:
		return *i.Per100g
	case i.Per100ml != nil:
		return *i.Per100ml
	case i.PerPiece != nil:
		return *i.PerPiece
	}
	return NutritionFacts{}
}

// Candidate is one (name, unit, nutrition) tuple extracted from a plan.
type Candidate struct {
	Name      string
	Unit      string
	Nutrition NutritionFacts
}
