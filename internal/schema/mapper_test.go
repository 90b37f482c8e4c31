package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	return NewMapper(DefaultRules())
}

func TestMapper_ExactSynonym(t *testing.T) {
	m := newTestMapper(t)

	field, ok := m.Map("inicio_das_violacoes")
	require.True(t, ok)
	assert.Equal(t, FieldDataFato, field)

	field, ok = m.Map("uf")
	require.True(t, ok)
	assert.Equal(t, FieldUFOcorrencia, field)

	field, ok = m.Map("grupos_vulneraveis")
	require.True(t, ok)
	assert.Equal(t, FieldGrupoVulneravel, field)
}

func TestMapper_Substring(t *testing.T) {
	m := newTestMapper(t)

	// Token extends a synonym key.
	field, ok := m.Map("municipio_de_ocorrencia")
	require.True(t, ok)
	assert.Equal(t, FieldMunicipio, field)

	// Token is contained in a synonym key.
	field, ok = m.Map("orientacao_sexual_da")
	require.True(t, ok)
	assert.Equal(t, FieldVitimaOrientacao, field)
}

func TestMapper_Keywords(t *testing.T) {
	m := newTestMapper(t)

	field, ok := m.Map("qual_o_grupo_vulneradooo")
	require.True(t, ok)
	assert.Equal(t, FieldGrupoVulneravel, field)

	field, ok = m.Map("cor_declarada")
	require.True(t, ok)
	assert.Equal(t, FieldVitimaRacaCor, field)
}

func TestMapper_KeywordExclusion(t *testing.T) {
	r, err := LoadRules([]byte(`
keywords:
  - field: uf_ocorrencia
    all: [uf]
    none: [vitima]
`))
	require.NoError(t, err)
	m := NewMapper(r)

	field, ok := m.Map("uf_do_fato")
	require.True(t, ok)
	assert.Equal(t, FieldUFOcorrencia, field)

	_, ok = m.Map("uf_residencia_vitima")
	assert.False(t, ok)
}

func TestMapper_Unmapped(t *testing.T) {
	m := newTestMapper(t)

	_, ok := m.Map("hash_interno")
	assert.False(t, ok)

	_, ok = m.Map(PlaceholderColumn)
	assert.False(t, ok)

	_, ok = m.Map("")
	assert.False(t, ok)
}

func TestMapper_MapHeader_MojibakeDateHeader(t *testing.T) {
	m := newTestMapper(t)

	// Both the clean and the byte-garbled rendering of the same header
	// resolve to the occurrence-date field.
	field, ok := m.MapHeader("Início das Violações")
	require.True(t, ok)
	assert.Equal(t, FieldDataFato, field)

	field, ok = m.MapHeader("Inã­cio das Violaã§ãµes")
	require.True(t, ok)
	assert.Equal(t, FieldDataFato, field)
}

func TestMapper_ResolutionMonotoneUnderRuleAddition(t *testing.T) {
	base, err := LoadRules([]byte(`
synonyms:
  uf: uf_ocorrencia
`))
	require.NoError(t, err)

	extended, err := LoadRules([]byte(`
synonyms:
  uf: uf_ocorrencia
  estado: uf_ocorrencia
keywords:
  - field: municipio_ocorrencia
    all: [municipio]
`))
	require.NoError(t, err)

	corpus := []string{"uf", "estado", "municipio", "municipio_residencia", "outra"}

	resolved := func(m *Mapper) int {
		n := 0
		for _, tok := range corpus {
			if _, ok := m.Map(tok); ok {
				n++
			}
		}
		return n
	}

	assert.GreaterOrEqual(t, resolved(NewMapper(extended)), resolved(NewMapper(base)))
}

func TestLoadRules_UnknownField(t *testing.T) {
	_, err := LoadRules([]byte("synonyms:\n  x: nao_existe\n"))
	assert.Error(t, err)

	_, err = LoadRules([]byte("keywords:\n  - field: nao_existe\n    all: [x]\n"))
	assert.Error(t, err)
}

func TestMaster_FixedOrder(t *testing.T) {
	m := Master()
	require.Len(t, m, 10)
	assert.Equal(t, FieldDataFato, m[0])
	assert.Equal(t, FieldVitimaOrientacao, m[9])

	// Mutating the returned slice must not affect the canonical order.
	m[0] = "x"
	assert.Equal(t, FieldDataFato, Master()[0])
}
