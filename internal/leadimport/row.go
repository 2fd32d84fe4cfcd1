package leadimport

import "strings"

// ParsingContext is per-row scratch state that never reaches the output
// record directly.
type ParsingContext struct {
	FirstName string
	LastName  string
	Comments  []string

	Platform string
	Campaign string
	AdName   string
	FormName string
}

// PartialRow accumulates the values found for one source line. Writes follow
// the row's FieldPolicies: OverwriteNever fields keep their first non-empty
// value, Append fields collect into Context.Comments.
type PartialRow struct {
	values   map[Field]string
	surface  *float64
	policies FieldPolicies

	Context ParsingContext
}

// NewPartialRow returns an empty row using the given policies.
func NewPartialRow(policies FieldPolicies) *PartialRow {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &PartialRow{
		values:   make(map[Field]string, 16),
		policies: policies,
	}
}

// Set writes v to f and reports whether the row changed. Empty values are
// ignored. first_name and last_name go to the parsing context.
func (r *PartialRow) Set(f Field, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}

	if r.policies.policy(f) == Append {
		r.Context.Comments = append(r.Context.Comments, v)
		return true
	}

	switch f {
	case FieldFirstName:
		if r.Context.FirstName != "" {
			return false
		}
		r.Context.FirstName = v
		return true
	case FieldLastName:
		if r.Context.LastName != "" {
			return false
		}
		r.Context.LastName = v
		return true
	}

	if _, ok := r.values[f]; ok {
		return false
	}
	r.values[f] = v
	return true
}

// SetSurface records the surface area unless one is already set.
func (r *PartialRow) SetSurface(m2 float64) bool {
	if r.surface != nil {
		return false
	}
	r.surface = &m2
	return true
}

// Has reports whether f holds a value.
func (r *PartialRow) Has(f Field) bool {
	switch f {
	case FieldSurface:
		return r.surface != nil
	case FieldFirstName:
		return r.Context.FirstName != ""
	case FieldLastName:
		return r.Context.LastName != ""
	}
	_, ok := r.values[f]
	return ok
}

// Get returns the value of f, or "" when unset.
func (r *PartialRow) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return r.Context.FirstName
	case FieldLastName:
		return r.Context.LastName
	}
	return r.values[f]
}

// finalize fills derived fields in place. It must run once, after every
// column of the line has been assigned.
func (r *PartialRow) finalize() {
	if !r.Has(FieldFullName) {
		full := strings.TrimSpace(r.Context.FirstName + " " + r.Context.LastName)
		if full != "" {
			r.values[FieldFullName] = full
		}
	}

	if !r.Has(FieldSource) {
		for _, v := range []string{r.Context.Campaign, r.Context.AdName, r.Context.Platform} {
			if v != "" {
				r.values[FieldSource] = v
				break
			}
		}
	}
	if isFacebookPlatform(r.Context.Platform) && strings.EqualFold(r.values[FieldSource], "facebook") {
		r.values[FieldSource] = "Facebook Ads"
	}

	if r.Context.FormName != "" && !r.Has(FieldProductName) {
		r.values[FieldProductName] = r.Context.FormName
	}

	if pc, ok := r.values[FieldPostalCode]; ok {
		pc = stripSpaces(pc)
		if pc == "" {
			delete(r.values, FieldPostalCode)
		} else {
			r.values[FieldPostalCode] = pc
		}
	}

	fragments := r.Context.Comments
	if direct, ok := r.values[FieldComment]; ok {
		fragments = append([]string{direct}, fragments...)
	}
	if c := strings.TrimSpace(strings.Join(dedupe(fragments), "\n")); c != "" {
		r.values[FieldComment] = c
	} else {
		delete(r.values, FieldComment)
	}
}

// missing returns the required fields the row lacks.
func (r *PartialRow) missing() []Field {
	var out []Field
	for _, f := range RequiredFields {
		if !r.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (r *PartialRow) canonical() CanonicalLeadRow {
	return CanonicalLeadRow{
		FullName:    r.values[FieldFullName],
		Email:       r.values[FieldEmail],
		PhoneRaw:    r.values[FieldPhone],
		City:        r.values[FieldCity],
		PostalCode:  r.values[FieldPostalCode],
		Company:     r.values[FieldCompany],
		ProductName: r.values[FieldProductName],
		SurfaceM2:   r.surface,
		UTMSource:   r.values[FieldSource],
		Status:      Status(r.values[FieldStatus]),
		Commentaire: r.values[FieldComment],
		DateRdv:     r.values[FieldDateRdv],
		HeureRdv:    r.values[FieldHeureRdv],
	}
}

func isFacebookPlatform(p string) bool {
	p = strings.ToLower(strings.TrimSpace(p))
	return p == "fb" || strings.Contains(p, "facebook")
}

// dedupe drops repeated fragments, keeping first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
