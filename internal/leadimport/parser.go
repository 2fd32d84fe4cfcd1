package leadimport

import (
	"io"
	"log/slog"
	"strings"
)

// Parser holds the lookup tables used to normalize lead files. All fields
// are read-only during Parse, so one Parser may be shared by goroutines.
type Parser struct {
	Aliases    AliasTable
	Statuses   StatusTable
	Heuristics []HeuristicRule
	Policies   FieldPolicies
	Normalize  HeaderNormalizer

	// Logger receives a warning for each unreadable field_data cell.
	Logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithAliases replaces the alias table.
func WithAliases(t AliasTable) Option {
	return func(p *Parser) { p.Aliases = t }
}

// WithStatuses replaces the status table.
func WithStatuses(t StatusTable) Option {
	return func(p *Parser) { p.Statuses = t }
}

// WithHeuristics replaces the heuristic rule list.
func WithHeuristics(rules []HeuristicRule) Option {
	return func(p *Parser) { p.Heuristics = rules }
}

// WithPolicies replaces the per-field write policies.
func WithPolicies(pol FieldPolicies) Option {
	return func(p *Parser) { p.Policies = pol }
}

// WithHeaderNormalizer replaces NormalizeHeader, e.g. with NormalizeHeaderFolded.
func WithHeaderNormalizer(fn HeaderNormalizer) Option {
	return func(p *Parser) { p.Normalize = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.Logger = l }
}

// NewParser returns a Parser with the default tables, modified by opts.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		Aliases:    DefaultAliasTable(),
		Statuses:   DefaultStatusTable(),
		Heuristics: DefaultHeuristics(),
		Policies:   DefaultPolicies(),
		Normalize:  NormalizeHeader,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.Logger == nil {
		p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// Parse normalizes a whole CSV file. The first non-empty line is the header.
// Lines whose fields are all empty are ignored; lines missing a required
// field are counted in Skipped and listed in Failed. Parse never fails: bad
// input yields an empty result.
func (p *Parser) Parse(content string) Result {
	res := Result{Rows: []CanonicalLeadRow{}}

	lines := splitLines(strings.TrimPrefix(content, "\ufeff"))
	if len(lines) == 0 {
		return res
	}

	delim := DetectDelimiter(lines[0])
	headers := p.normalizeHeaders(SplitLine(lines[0], delim))

	for i, line := range lines[1:] {
		lineNum := i + 2
		values := SplitLine(line, delim)
		if isBlankRow(values) {
			continue
		}

		row := p.assemble(headers, values, lineNum)
		if missing := row.missing(); len(missing) > 0 {
			res.Skipped++
			res.Failed = append(res.Failed, FailedRow{
				LineNumber: lineNum,
				Missing:    missing,
				Data:       values,
			})
			continue
		}
		res.Rows = append(res.Rows, row.canonical())
	}

	return res
}

func (p *Parser) normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = p.Normalize(h)
	}
	return out
}

// assemble builds the PartialRow for one data line and fills derived fields.
func (p *Parser) assemble(headers, values []string, lineNum int) *PartialRow {
	row := NewPartialRow(p.Policies)

	for i, h := range headers {
		if i >= len(values) {
			break
		}
		v := values[i]
		if v == "" || h == "" {
			continue
		}
		if p.assignSpecial(row, h, v, lineNum) {
			continue
		}
		p.assign(row, h, v)
	}

	row.finalize()
	return row
}

// Special column kinds, keyed by normalized header. These columns carry
// export metadata rather than a lead field.
const (
	kindFieldData = "field_data"
	kindPlatform  = "platform"
	kindCampaign  = "campaign_name"
	kindAdName    = "ad_name"
	kindFormName  = "form_name"
)

var specialTargets = map[string]string{
	"fielddata":       kindFieldData,
	"firstname":       string(FieldFirstName),
	"prenom":          string(FieldFirstName),
	"prnom":           string(FieldFirstName),
	"lastname":        string(FieldLastName),
	"nomdefamille":    string(FieldLastName),
	"platform":        kindPlatform,
	"plateforme":      kindPlatform,
	"campaignname":    kindCampaign,
	"nomdelacampagne": kindCampaign,
	"adname":          kindAdName,
	"nomdelannonce":   kindAdName,
	"formname":        kindFormName,
	"nomduformulaire": kindFormName,
}

// assignSpecial handles single-purpose export columns. It reports whether
// the header was one of them.
func (p *Parser) assignSpecial(row *PartialRow, header, value string, lineNum int) bool {
	kind, ok := specialTargets[header]
	if !ok {
		return false
	}

	switch kind {
	case kindFieldData:
		p.assignFieldData(row, value, lineNum)
	case string(FieldFirstName):
		row.Set(FieldFirstName, value)
	case string(FieldLastName):
		row.Set(FieldLastName, value)
	case kindPlatform:
		setOnce(&row.Context.Platform, value)
	case kindCampaign:
		setOnce(&row.Context.Campaign, value)
	case kindAdName:
		setOnce(&row.Context.AdName, value)
	case kindFormName:
		setOnce(&row.Context.FormName, value)
	}
	return true
}

func setOnce(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// assign routes a normalized header/value pair through the alias table,
// then the heuristics. Unclassified columns are dropped.
func (p *Parser) assign(row *PartialRow, header, value string) {
	if f, ok := p.Aliases.Lookup(header); ok {
		p.assignField(row, f, value)
		return
	}
	applyHeuristics(p.Heuristics, row, header, value)
}

// assignField writes a value to a known field, applying the field's parser.
func (p *Parser) assignField(row *PartialRow, f Field, value string) {
	switch f {
	case FieldSurface:
		if m2, ok := ParseSurface(value); ok {
			row.SetSurface(m2)
		}
	case FieldStatus:
		if st, ok := p.Statuses.Normalize(value); ok {
			row.Set(FieldStatus, string(st))
		}
	case FieldPostalCode:
		row.Set(FieldPostalCode, stripSpaces(value))
	default:
		row.Set(f, value)
	}
}

// assignFieldData merges a Lead-Ads field_data cell into the row.
func (p *Parser) assignFieldData(row *PartialRow, raw string, lineNum int) {
	entries, ok := ParseFieldData(raw)
	if !ok {
		p.Logger.Warn("ignoring unreadable field_data",
			"line", lineNum,
			"length", len(raw),
		)
		return
	}

	for _, e := range entries {
		name := p.Normalize(e.EntryName())
		value := e.Text()
		if name == "" || value == "" {
			continue
		}
		if name == "fullname" {
			row.Set(FieldFullName, value)
			continue
		}
		p.assign(row, name, value)
	}
}
