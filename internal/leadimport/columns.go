package leadimport

import "strings"

// Column describes how one header cell is read.
type Column struct {
	Header string `json:"header"`

	// Target is the canonical field, the special column kind (field_data,
	// platform, campaign_name, ad_name, form_name), or the name of the
	// heuristic rule that claimed the header. Empty when the column is
	// ignored.
	Target string `json:"target,omitempty"`

	// Via is "alias", "special" or "heuristic".
	Via string `json:"via,omitempty"`
}

// Columns reads the header line of content and reports, per column, where
// its values will go. It returns nil when content has no non-empty line.
func (p *Parser) Columns(content string) []Column {
	lines := splitLines(strings.TrimPrefix(content, "\ufeff"))
	if len(lines) == 0 {
		return nil
	}

	raw := SplitLine(lines[0], DetectDelimiter(lines[0]))
	cols := make([]Column, len(raw))
	for i, h := range raw {
		cols[i] = p.column(h)
	}
	return cols
}

func (p *Parser) column(header string) Column {
	col := Column{Header: header}

	norm := p.Normalize(header)
	if norm == "" {
		return col
	}
	if target, ok := specialTargets[norm]; ok {
		col.Target, col.Via = target, "special"
		return col
	}
	if f, ok := p.Aliases.Lookup(norm); ok {
		col.Target, col.Via = string(f), "alias"
		return col
	}
	for _, rule := range p.Heuristics {
		if rule.Match(norm) {
			col.Target, col.Via = rule.Name, "heuristic"
			return col
		}
	}
	return col
}

// HasHeader reports whether the first line of content names at least one
// column the parser can use.
func (p *Parser) HasHeader(content string) bool {
	for _, c := range p.Columns(content) {
		if c.Target != "" {
			return true
		}
	}
	return false
}
