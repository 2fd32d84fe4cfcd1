package leadimport

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FieldDataEntry is one answer of a Lead-Ads form, as exported in the
// field_data column.
type FieldDataEntry struct {
	Name   string `json:"name"`
	Key    string `json:"key"`
	Label  string `json:"label"`
	Value  any    `json:"value"`
	Values []any  `json:"values"`
}

// EntryName returns name, falling back to key then label.
func (e FieldDataEntry) EntryName() string {
	for _, n := range []string{e.Name, e.Key, e.Label} {
		if strings.TrimSpace(n) != "" {
			return n
		}
	}
	return ""
}

// Text joins the entry's non-empty values with ", ".
func (e FieldDataEntry) Text() string {
	vals := e.Values
	if len(vals) == 0 && e.Value != nil {
		vals = []any{e.Value}
	}

	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := scalarString(v); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// ParseFieldData decodes a field_data cell. When the first attempt fails it
// retries once after collapsing doubled quotes and removing enclosing quotes,
// the shape left behind by exports that escape JSON for CSV twice. ok is
// false when neither attempt yields a JSON array.
func ParseFieldData(raw string) ([]FieldDataEntry, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	if entries, err := decodeEntries(raw); err == nil {
		return entries, true
	}

	sanitized := strings.ReplaceAll(raw, `""`, `"`)
	sanitized = strings.TrimSpace(sanitized)
	if len(sanitized) >= 2 && strings.HasPrefix(sanitized, `"`) && strings.HasSuffix(sanitized, `"`) {
		sanitized = sanitized[1 : len(sanitized)-1]
	}

	if entries, err := decodeEntries(sanitized); err == nil {
		return entries, true
	}
	return nil, false
}

func decodeEntries(s string) ([]FieldDataEntry, error) {
	var entries []FieldDataEntry
	if err := json.Unmarshal([]byte(s), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
