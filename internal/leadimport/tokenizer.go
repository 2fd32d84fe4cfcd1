package leadimport

import "strings"

// DetectDelimiter picks the field separator from the header line: ';' when it
// occurs strictly more often than ',', otherwise ',' if any comma exists,
// otherwise ';'.
func DetectDelimiter(line string) rune {
	commas := strings.Count(line, ",")
	semis := strings.Count(line, ";")

	switch {
	case semis > commas:
		return ';'
	case commas > 0:
		return ','
	default:
		return ';'
	}
}

// SplitLine splits one raw line on delim, honoring double-quoted regions.
// Inside quotes, "" yields a literal quote; every other quote only opens or
// closes a region and is dropped. Each field is trimmed of surrounding
// whitespace. The result always has at least one element.
func SplitLine(line string, delim rune) []string {
	src := []rune(line)
	fields := make([]string, 0, 8)

	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(src) && src[i+1] == '"' {
				cur.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))

	return fields
}

// splitLines returns the trimmed, non-empty lines of content.
func splitLines(content string) []string {
	raw := strings.Split(content, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(strings.TrimSuffix(l, "\r"))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func isBlankRow(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}
