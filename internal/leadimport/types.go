package leadimport

import "strings"

// Field is the canonical key of a lead attribute.
type Field string

const (
	FieldFullName    Field = "full_name"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone_raw"
	FieldCity        Field = "city"
	FieldPostalCode  Field = "postal_code"
	FieldCompany     Field = "company"
	FieldProductName Field = "product_name"
	FieldSurface     Field = "surface_m2"
	FieldSource      Field = "utm_source"
	FieldStatus      Field = "status"
	FieldComment     Field = "commentaire"
	FieldDateRdv     Field = "date_rdv"
	FieldHeureRdv    Field = "heure_rdv"

	// Context-only fields. They feed the full name when no column sets it
	// directly and never appear on a CanonicalLeadRow.
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
)

// RequiredFields lists the fields every accepted row must carry.
var RequiredFields = []Field{FieldFullName, FieldEmail, FieldPhone, FieldCity, FieldPostalCode}

var knownFields = map[Field]bool{
	FieldFullName: true, FieldEmail: true, FieldPhone: true, FieldCity: true,
	FieldPostalCode: true, FieldCompany: true, FieldProductName: true,
	FieldSurface: true, FieldSource: true, FieldStatus: true, FieldComment: true,
	FieldDateRdv: true, FieldHeureRdv: true, FieldFirstName: true, FieldLastName: true,
}

// ParseField returns the Field for a canonical key such as "postal_code".
func ParseField(s string) (Field, bool) {
	f := Field(strings.TrimSpace(strings.ToLower(s)))
	return f, knownFields[f]
}

// FieldPolicy controls what happens when a field is written more than once
// for the same row.
type FieldPolicy int

const (
	// OverwriteNever keeps the first non-empty value.
	OverwriteNever FieldPolicy = iota
	// Append collects every value; used for free-text comments.
	Append
)

// FieldPolicies maps fields to their write policy. Fields absent from the map
// use OverwriteNever.
type FieldPolicies map[Field]FieldPolicy

// DefaultPolicies returns the standard policy set: comments accumulate,
// everything else is first-writer-wins.
func DefaultPolicies() FieldPolicies {
	return FieldPolicies{FieldComment: Append}
}

func (p FieldPolicies) policy(f Field) FieldPolicy {
	if pol, ok := p[f]; ok {
		return pol
	}
	return OverwriteNever
}

// CanonicalLeadRow is a validated lead ready for insertion.
// Optional fields are empty strings (or nil for SurfaceM2) when unknown.
type CanonicalLeadRow struct {
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	PhoneRaw    string   `json:"phone_raw"`
	City        string   `json:"city"`
	PostalCode  string   `json:"postal_code"`
	Company     string   `json:"company,omitempty"`
	ProductName string   `json:"product_name,omitempty"`
	SurfaceM2   *float64 `json:"surface_m2,omitempty"`
	UTMSource   string   `json:"utm_source,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Commentaire string   `json:"commentaire,omitempty"`
	DateRdv     string   `json:"date_rdv,omitempty"`
	HeureRdv    string   `json:"heure_rdv,omitempty"`
}

// FailedRow describes a non-blank line rejected for missing required fields.
type FailedRow struct {
	LineNumber int      `json:"line_number"` // 1-based, counted over non-blank lines, header is line 1
	Missing    []Field  `json:"missing"`
	Data       []string `json:"data"`
}

// Reason returns a short human-readable rejection reason.
func (f FailedRow) Reason() string {
	names := make([]string, len(f.Missing))
	for i, m := range f.Missing {
		names[i] = string(m)
	}
	return "missing required field: " + strings.Join(names, ", ")
}

// Result is the output of Parser.Parse.
type Result struct {
	Rows    []CanonicalLeadRow `json:"rows"`
	Skipped int                `json:"skipped"`
	Failed  []FailedRow        `json:"failed,omitempty"`
}
