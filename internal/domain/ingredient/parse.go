package ingredient

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// leading number, optional unit token, remainder is the name
	quantityPattern = regexp.MustCompile(`^(\d+(\.\d+)?)\s*([a-zA-Z]+)?\s+(.+)$`)

	// applied to the first whitespace token only
	numericPrefixPattern = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)([a-zA-Z]*)$`)
)

// ParsedLine is the result of splitting an ingredient mention.
type ParsedLine struct {
	Raw          string
	Amount       *float64
	QuantityText string
	Unit         string
	Name         string
}

// HasQuantity reports whether a numeric amount was recognised.
func (p ParsedLine) HasQuantity() bool {
	return p.Amount != nil
}

// ParseLine splits "150g quinoa" into 150 / g / quinoa. Text that does not
// match keeps the whole string as name with no quantity or unit.
func ParseLine(text string) ParsedLine {
	raw := strings.TrimSpace(text)
	parsed := ParsedLine{Raw: raw, Name: raw}

	m := quantityPattern.FindStringSubmatch(raw)
	if m == nil {
		return parsed
	}

	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return parsed
	}

	parsed.Amount = &amount
	parsed.QuantityText = m[1]
	parsed.Unit = m[3]
	parsed.Name = strings.TrimSpace(m[4])
	return parsed
}

// ParseLoose is the weaker parse used when no structured nutrition is
// available: only the first whitespace token is inspected.
func ParseLoose(text string) ParsedLine {
	raw := strings.TrimSpace(text)
	parsed := ParsedLine{Raw: raw, Name: raw}

	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return parsed
	}

	m := numericPrefixPattern.FindStringSubmatch(fields[0])
	if m == nil {
		return parsed
	}

	amount, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return parsed
	}

	parsed.Amount = &amount
	parsed.QuantityText = m[1]
	parsed.Unit = m[2]
	parsed.Name = strings.Join(fields[1:], " ")
	return parsed
}

// UnitOrDefault returns the parsed unit, or piece when an amount was found
// without a unit ("1 avocat").
func (p ParsedLine) UnitOrDefault() string {
	if p.Unit != "" {
		return p.Unit
	}
	if p.Amount != nil {
		return UnitPiece
	}
	return ""
}
