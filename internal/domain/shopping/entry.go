package shopping

import (
	"strconv"
	"strings"

	"github.com/nutriplan/core/internal/domain/ingredient"
	"github.com/nutriplan/core/internal/domain/plan"
)

// Entry is a parsed shopping line before persistence. Amount is set only
// when Quantity is numeric.
type Entry struct {
	Name     string
	Quantity string
	Amount   *float64
	Unit     string
	Category Category
}

// Key is the consolidation key of the entry's name.
func (e Entry) Key() string {
	return strings.ToLower(strings.TrimSpace(e.Name))
}

// ParseEntry splits a free-text ingredient line. Text without a leading
// number becomes an unquantified name.
func ParseEntry(text string) Entry {
	parsed := ingredient.ParseLine(text)
	e := Entry{Name: parsed.Name, Unit: parsed.Unit}
	if parsed.Amount != nil {
		amount := *parsed.Amount
		e.Amount = &amount
		e.Quantity = parsed.QuantityText
	}
	return e
}

// EntryFromMention converts a plan mention into an entry.
func EntryFromMention(m plan.Mention) Entry {
	if !m.Structured {
		return ParseEntry(m.Text)
	}
	e := Entry{Name: m.Name, Unit: m.Unit}
	if m.Quantity != nil {
		amount := *m.Quantity
		e.Amount = &amount
		e.Quantity = FormatAmount(amount)
	}
	return e
}

// NewEntry builds an entry from user input where the quantity is free text.
func NewEntry(name, quantity, unit string) Entry {
	e := Entry{
		Name:     strings.TrimSpace(name),
		Quantity: strings.TrimSpace(quantity),
		Unit:     strings.TrimSpace(unit),
	}
	if e.Quantity != "" {
		if amount, err := strconv.ParseFloat(strings.Replace(e.Quantity, ",", ".", 1), 64); err == nil {
			e.Amount = &amount
		}
	}
	return e
}

// FormatAmount renders a quantity without trailing zeros.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Consolidate merges entries sharing a lower-cased name and unit when both
// carry a numeric quantity. Everything else is kept as a separate entry.
// Output follows first-occurrence order.
func Consolidate(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	index := make(map[string]int)

	for _, e := range entries {
		if e.Key() == "" {
			continue
		}
		if e.Amount == nil {
			out = append(out, e)
			continue
		}

		key := e.Key() + "\x00" + strings.ToLower(e.Unit)
		if i, ok := index[key]; ok {
			sum := *out[i].Amount + *e.Amount
			out[i].Amount = &sum
			out[i].Quantity = FormatAmount(sum)
			continue
		}

		amount := *e.Amount
		e.Amount = &amount
		index[key] = len(out)
		out = append(out, e)
	}

	return out
}

// Exclude drops entries whose lower-cased name is in names.
func Exclude(entries []Entry, names []string) []Entry {
	if len(names) == 0 {
		return entries
	}
	excluded := make(map[string]struct{}, len(names))
	for _, n := range names {
		excluded[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}

	out := entries[:0:0]
	for _, e := range entries {
		if _, skip := excluded[e.Key()]; skip {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Build runs the full consolidation over plan mentions: parse, categorize,
// consolidate, exclude.
func Build(mentions []plan.Mention, c *Categorizer, exclude []string) []Entry {
	entries := make([]Entry, 0, len(mentions))
	for _, m := range mentions {
		e := EntryFromMention(m)
		e.Category = c.Categorize(e.Name)
		entries = append(entries, e)
	}
	return Exclude(Consolidate(entries), exclude)
}
