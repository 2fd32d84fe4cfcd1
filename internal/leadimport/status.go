package leadimport

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Status is one of the fixed lead pipeline states.
type Status string

const (
	StatusNonEligible      Status = "Non éligible"
	StatusARappeler        Status = "À rappeler"
	StatusPhoning          Status = "Phoning"
	StatusARecontacter     Status = "À recontacter"
	StatusProgrammerVisite Status = "Programmer pré-visite"
	StatusEligible         Status = "Éligible"
)

// Statuses lists the vocabulary in pipeline order.
var Statuses = []Status{
	StatusNonEligible,
	StatusARappeler,
	StatusPhoning,
	StatusARecontacter,
	StatusProgrammerVisite,
	StatusEligible,
}

// ParseStatus returns the Status whose label matches s exactly (after
// trimming). Use NormalizeStatus for free text.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// StatusTable maps cleaned status text (see CleanStatusText) to a Status.
type StatusTable map[string]Status

// DefaultStatusTable returns a fresh copy of the built-in variants.
func DefaultStatusTable() StatusTable {
	return StatusTable{
		"non eligible":          StatusNonEligible,
		"not eligible":          StatusNonEligible,
		"ineligible":            StatusNonEligible,
		"non eligibles":         StatusNonEligible,
		"a rappeler":            StatusARappeler,
		"rappeler":              StatusARappeler,
		"to call back":          StatusARappeler,
		"call back":             StatusARappeler,
		"callback":              StatusARappeler,
		"phoning":               StatusPhoning,
		"a recontacter":         StatusARecontacter,
		"recontacter":           StatusARecontacter,
		"to recontact":          StatusARecontacter,
		"recontact":             StatusARecontacter,
		"to be recontacted":     StatusARecontacter,
		"programmer pre visite": StatusProgrammerVisite,
		"programmer previsite":  StatusProgrammerVisite,
		"pre visite":            StatusProgrammerVisite,
		"previsite":             StatusProgrammerVisite,
		"schedule pre visit":    StatusProgrammerVisite,
		"schedule previsit":     StatusProgrammerVisite,
		"eligible":              StatusEligible,
	}
}

// A transform chain holds state between calls, so each caller borrows its own.
var stripMarksPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

// foldDiacritics removes combining marks: "Éligible" -> "Eligible".
func foldDiacritics(s string) string {
	t := stripMarksPool.Get().(transform.Transformer)
	defer stripMarksPool.Put(t)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CleanStatusText decomposes s, drops diacritics, lowercases, turns hyphens
// into spaces and collapses runs of whitespace.
func CleanStatusText(s string) string {
	s = strings.ToLower(foldDiacritics(s))
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Normalize maps free-text status to a Status. ok is false when the text is
// not a known variant; the caller decides the default.
func (t StatusTable) Normalize(s string) (Status, bool) {
	st, ok := t[CleanStatusText(s)]
	return st, ok
}

// NormalizeStatus normalizes s against the default table.
func NormalizeStatus(s string) (Status, bool) {
	return defaultStatuses.Normalize(s)
}

var defaultStatuses = DefaultStatusTable()
