// Package geo resolves free-text municipality references to canonical
// six-digit IBGE municipality IDs via a composite name+state key.
package geo

import (
	"github.com/dadosbr/segdata/internal/schema"
)

// keySeparator joins the normalized name and state code. The separator is
// fixed: staged outputs embed these keys and must stay comparable across
// runs.
const keySeparator = " - "

// CompositeKey builds the canonical lookup key for a municipality name and
// state abbreviation: both sides uppercased, diacritics stripped,
// whitespace collapsed, joined by the fixed separator.
func CompositeKey(name, uf string) string {
	return schema.NormalizeValue(name) + keySeparator + schema.NormalizeValue(uf)
}

// ufBySigla holds the 26 states plus the federal district.
var ufBySigla = map[string]string{
	"AC": "ACRE", "AL": "ALAGOAS", "AP": "AMAPA", "AM": "AMAZONAS",
	"BA": "BAHIA", "CE": "CEARA", "DF": "DISTRITO FEDERAL",
	"ES": "ESPIRITO SANTO", "GO": "GOIAS", "MA": "MARANHAO",
	"MT": "MATO GROSSO", "MS": "MATO GROSSO DO SUL", "MG": "MINAS GERAIS",
	"PA": "PARA", "PB": "PARAIBA", "PR": "PARANA", "PE": "PERNAMBUCO",
	"PI": "PIAUI", "RJ": "RIO DE JANEIRO", "RN": "RIO GRANDE DO NORTE",
	"RS": "RIO GRANDE DO SUL", "RO": "RONDONIA", "RR": "RORAIMA",
	"SC": "SANTA CATARINA", "SP": "SAO PAULO", "SE": "SERGIPE",
	"TO": "TOCANTINS",
}

var siglaByName = func() map[string]string {
	m := make(map[string]string, len(ufBySigla))
	for sigla, name := range ufBySigla {
		m[name] = sigla
	}
	return m
}()

// UFSigla converts a state reference (two-letter code or full name, any
// casing or accenting) to its two-letter code. ok is false for anything
// that is not a Brazilian state.
func UFSigla(ref string) (string, bool) {
	norm := schema.NormalizeValue(ref)
	if _, ok := ufBySigla[norm]; ok {
		return norm, true
	}
	if sigla, ok := siglaByName[norm]; ok {
		return sigla, true
	}
	return "", false
}

// SoutheastUFs are the states of the two-region comparison corpus.
var SoutheastUFs = []string{"SP", "RJ", "MG", "ES"}

// IsSoutheast reports whether the state reference belongs to the Southeast.
func IsSoutheast(ref string) bool {
	sigla, ok := UFSigla(ref)
	if !ok {
		return false
	}
	for _, uf := range SoutheastUFs {
		if uf == sigla {
			return true
		}
	}
	return false
}
