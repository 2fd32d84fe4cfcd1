package leadimport

import "strings"

// HeuristicRule classifies a header that has no alias entry. Match receives
// the normalized header; Assign writes the value into the row.
type HeuristicRule struct {
	Name   string
	Match  func(header string) bool
	Assign func(row *PartialRow, value string)
}

// DefaultHeuristics returns the built-in rules in precedence order. The first
// rule whose Match returns true wins; later rules are not consulted.
func DefaultHeuristics() []HeuristicRule {
	return []HeuristicRule{
		{
			Name:   "first_name",
			Match:  containing("prenom"),
			Assign: setter(FieldFirstName),
		},
		{
			Name: "name",
			Match: func(h string) bool {
				return strings.Contains(h, "nom") && !containsAny(h, "campaign", "form", "ad")
			},
			Assign: func(row *PartialRow, v string) {
				if !row.Has(FieldFullName) {
					row.Set(FieldFullName, v)
					return
				}
				row.Set(FieldLastName, v)
			},
		},
		{
			Name:   "email",
			Match:  containing("email", "courriel", "mail"),
			Assign: setter(FieldEmail),
		},
		{
			Name:   "phone",
			Match:  containing("phone", "tel", "mobile", "telephone"),
			Assign: setter(FieldPhone),
		},
		{
			Name:   "city",
			Match:  containing("ville", "city", "localite"),
			Assign: setter(FieldCity),
		},
		{
			Name:  "postal_code",
			Match: containing("codepostal", "postal", "postcode", "zip"),
			Assign: func(row *PartialRow, v string) {
				row.Set(FieldPostalCode, stripSpaces(v))
			},
		},
		{
			Name:  "surface",
			Match: containing("surface"),
			Assign: func(row *PartialRow, v string) {
				if m2, ok := ParseSurface(v); ok {
					row.SetSurface(m2)
				}
			},
		},
		{
			Name:   "product",
			Match:  containing("produit", "categorie", "travaux", "projet", "installation"),
			Assign: setter(FieldProductName),
		},
		{
			Name:   "comment",
			Match:  containing("commentaire", "message", "precisions", "note"),
			Assign: setter(FieldComment),
		},
		{
			Name: "appointment_date",
			Match: func(h string) bool {
				return isAppointment(h) && strings.Contains(h, "date")
			},
			Assign: setter(FieldDateRdv),
		},
		{
			Name: "appointment_time",
			Match: func(h string) bool {
				return isAppointment(h) && containsAny(h, "heure", "time", "hour")
			},
			Assign: setter(FieldHeureRdv),
		},
	}
}

// applyHeuristics runs the first matching rule and reports whether any matched.
func applyHeuristics(rules []HeuristicRule, row *PartialRow, header, value string) bool {
	for _, rule := range rules {
		if rule.Match(header) {
			rule.Assign(row, value)
			return true
		}
	}
	return false
}

func setter(f Field) func(*PartialRow, string) {
	return func(row *PartialRow, v string) {
		row.Set(f, v)
	}
}

func containing(subs ...string) func(string) bool {
	return func(h string) bool {
		return containsAny(h, subs...)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isAppointment(h string) bool {
	return containsAny(h, "rdv", "rendezvous", "appointment")
}
