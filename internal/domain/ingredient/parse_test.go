package ingredient

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_ExtractsQuantityUnitAndName(t *testing.T) {
	names := []string{"quinoa", "huile d'olive", "flocons d'avoine", "avocat"}
	numbers := []string{"1", "12", "150", "0.5", "2.25"}
	units := []string{"", "g", "ml", "kg"}

	for _, name := range names {
		for _, number := range numbers {
			for _, unit := range units {
				for _, sep := range []string{"", " "} {
					// without a unit token the next word would be taken as the unit
					if unit == "" && (sep == " " || strings.Contains(name, " ")) {
						continue
					}
					text := number + sep + unit + " " + name
					t.Run(text, func(t *testing.T) {
						p := ParseLine(text)

						require.True(t, p.HasQuantity())
						var want float64
						_, err := fmt.Sscanf(number, "%g", &want)
						require.NoError(t, err)
						assert.Equal(t, want, *p.Amount)
						assert.Equal(t, name, p.Name)
						assert.Equal(t, unit, p.Unit)
						if unit == "" {
							assert.Equal(t, UnitPiece, p.UnitOrDefault())
						} else {
							assert.Equal(t, unit, p.UnitOrDefault())
						}
					})
				}
			}
		}
	}
}

func TestParseLine_NoMatchKeepsWholeName(t *testing.T) {
	for _, text := range []string{"sel", "poivre du moulin", "quelques feuilles de menthe", "150g"} {
		p := ParseLine(text)

		assert.False(t, p.HasQuantity(), text)
		assert.Equal(t, text, p.Name)
		assert.Empty(t, p.Unit)
		assert.Empty(t, p.UnitOrDefault())
	}
}

func TestParseLoose(t *testing.T) {
	p := ParseLoose("50ml huile d'olive")
	require.True(t, p.HasQuantity())
	assert.Equal(t, 50.0, *p.Amount)
	assert.Equal(t, "ml", p.Unit)
	assert.Equal(t, "huile d'olive", p.Name)

	p = ParseLoose("1,5 banane")
	require.True(t, p.HasQuantity())
	assert.Equal(t, 1.5, *p.Amount)
	assert.Equal(t, "banane", p.Name)

	p = ParseLoose("une pincée de sel")
	assert.False(t, p.HasQuantity())
	assert.Equal(t, "une pincée de sel", p.Name)
}

func TestNew_SelectsFieldGroupFromUnit(t *testing.T) {
	facts := NutritionFacts{Calories: 120, Protein: 4}

	tests := []struct {
		unit string
		want UnitType
	}{
		{"g", UnitTypeMass},
		{"ml", UnitTypeVolume},
		{"piece", UnitTypeCount},
		{"cuillère", UnitTypeMass},
		{"", UnitTypeMass},
	}
	for _, tt := range tests {
		ing, err := New("quinoa", tt.unit, facts)
		require.NoError(t, err)

		assert.Equal(t, tt.want, ing.UnitType, tt.unit)
		assert.Equal(t, facts, ing.Nutrition())
		switch tt.want {
		case UnitTypeVolume:
			assert.NotNil(t, ing.Per100ml)
			assert.Nil(t, ing.Per100g)
		case UnitTypeCount:
			assert.NotNil(t, ing.PerPiece)
			assert.Nil(t, ing.Per100g)
		default:
			assert.NotNil(t, ing.Per100g)
			assert.Nil(t, ing.PerPiece)
		}
	}

	_, err := New("  ", "g", facts)
	assert.ErrorIs(t, err, ErrNameRequired)
}
