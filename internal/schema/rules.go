package schema

import (
	_ "embed"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// KeywordRule maps a normalized token to a target field when every token in
// All is a substring of it and none of the tokens in None are.
type KeywordRule struct {
	Field string   `yaml:"field"`
	All   []string `yaml:"all"`
	None  []string `yaml:"none,omitempty"`
}

// Matches reports whether the rule fires for the given normalized token.
func (r KeywordRule) Matches(token string) bool {
	for _, kw := range r.All {
		if !strings.Contains(token, kw) {
			return false
		}
	}
	for _, kw := range r.None {
		if strings.Contains(token, kw) {
			return false
		}
	}
	return len(r.All) > 0
}

// Rules is the immutable configuration data driving the Mapper: a synonym
// table plus an ordered keyword-rule list.
type Rules struct {
	Synonyms map[string]string `yaml:"synonyms"`
	Keywords []KeywordRule     `yaml:"keywords"`

	// synonymOrder preserves a deterministic iteration order for the
	// substring pass. yaml.v3 map decoding does not keep document order,
	// so keys are sorted at load time.
	synonymOrder []string
}

// LoadRules parses a rules document from YAML.
func LoadRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrap(err, "schema: parse rules")
	}
	for k, f := range r.Synonyms {
		if !IsMasterField(f) {
			return nil, eris.Errorf("schema: synonym %q targets unknown field %q", k, f)
		}
	}
	for _, kw := range r.Keywords {
		if !IsMasterField(kw.Field) {
			return nil, eris.Errorf("schema: keyword rule targets unknown field %q", kw.Field)
		}
	}
	r.synonymOrder = sortedKeys(r.Synonyms)
	return &r, nil
}

// DefaultRules returns the embedded reconciliation rules. Panics if the
// embedded document is invalid, which is caught by tests at build time.
func DefaultRules() *Rules {
	r, err := LoadRules(defaultRulesYAML)
	if err != nil {
		panic(err)
	}
	return r
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
