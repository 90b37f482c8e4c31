package schema

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PlaceholderColumn is returned for headers that are empty or blank.
const PlaceholderColumn = "coluna_sem_nome"

// mojibake maps UTF-8 byte pairs that were mis-decoded as Latin-1 back to
// their closest ASCII letter. Source files round-trip through enough broken
// tooling that "Município" routinely arrives as "MunicÃ­pio".
var mojibake = strings.NewReplacer(
	"ã¡", "a", "ã¢", "a", "ã£", "a", "ã¤", "a", "ã ", "a",
	"ã©", "e", "ãª", "e", "ã¨", "e", "ã«", "e",
	"ã­", "i", "ã¬", "i", "ã®", "i", "ã¯", "i",
	"ã³", "o", "ã²", "o", "ã´", "o", "ãµ", "o", "ã¶", "o",
	"ãº", "u", "ã¹", "u", "ã»", "u", "ã¼", "u",
	"ã§", "c", "ã±", "n",
)

var (
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9]+`)
	stripAccentsT = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeHeader converts a raw column header into a canonical lowercase
// snake_case token. Mis-decoded multi-byte sequences and accented letters
// collapse to plain ASCII, non-alphanumeric runs collapse to single
// underscores, and leading/trailing underscores are trimmed. Blank input
// yields PlaceholderColumn. The function never fails and is idempotent.
func NormalizeHeader(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return PlaceholderColumn
	}

	s = strings.ToLower(s)

	// BOM and its mojibake rendering.
	s = strings.ReplaceAll(s, "\uFEFF", "")
	s = strings.ReplaceAll(s, "ï»¿", "")

	// Mojibake pairs first: applying the accent fold to "ã­" directly would
	// keep a stray "a" instead of producing "i".
	s = mojibake.Replace(s)

	if folded, _, err := transform.String(stripAccentsT, s); err == nil {
		s = folded
	}

	s = nonAlnumRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")

	if s == "" {
		return PlaceholderColumn
	}
	return s
}

// NormalizeValue uppercases a cell value and strips diacritics for
// comparison (UF names, municipality names, vulnerable-group labels).
func NormalizeValue(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if folded, _, err := transform.String(stripAccentsT, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}
