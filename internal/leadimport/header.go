package leadimport

import "strings"

// HeaderNormalizer canonicalizes a raw column name for table lookup.
type HeaderNormalizer func(string) string

// NormalizeHeader lowercases h and drops every rune that is not an ASCII
// letter or digit. Accented letters are removed, not transliterated:
// "Téléphone" becomes "tlphone".
func NormalizeHeader(h string) string {
	h = strings.ToLower(h)
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range h {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeHeaderFolded strips diacritics before NormalizeHeader, so
// "Téléphone" becomes "telephone".
func NormalizeHeaderFolded(h string) string {
	return NormalizeHeader(foldDiacritics(h))
}
