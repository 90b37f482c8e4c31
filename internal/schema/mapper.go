package schema

import "strings"

// Mapper resolves normalized header tokens to master schema fields. It is a
// pure function of its rules: exact synonym lookup, then substring
// containment in either direction against the synonym keys, then the
// ordered keyword rules. The first successful pass wins.
type Mapper struct {
	rules *Rules
}

// NewMapper builds a Mapper over the given rules. Pass DefaultRules() for
// the embedded table.
func NewMapper(rules *Rules) *Mapper {
	return &Mapper{rules: rules}
}

// Map resolves a normalized token to a master field. ok is false when no
// rule matches; such columns are excluded from unified output.
func (m *Mapper) Map(token string) (field string, ok bool) {
	if token == "" || token == PlaceholderColumn {
		return "", false
	}

	if f, found := m.rules.Synonyms[token]; found {
		return f, true
	}

	for _, key := range m.rules.synonymOrder {
		if strings.Contains(token, key) || strings.Contains(key, token) {
			return m.rules.Synonyms[key], true
		}
	}

	for _, kw := range m.rules.Keywords {
		if kw.Matches(token) {
			return kw.Field, true
		}
	}

	return "", false
}

// MapHeader normalizes and maps a raw header in one step.
func (m *Mapper) MapHeader(raw string) (field string, ok bool) {
	return m.Map(NormalizeHeader(raw))
}
