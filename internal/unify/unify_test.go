package unify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadosbr/segdata/internal/frame"
	"github.com/dadosbr/segdata/internal/schema"
)

func testMapper() *schema.Mapper {
	return schema.NewMapper(schema.DefaultRules())
}

func TestUnify_SchemaAlwaysMasterOrder(t *testing.T) {
	raw := frame.New([]string{"Município", "UF", "Grupo Vulnerável"})
	raw.AppendRow([]string{"Santos", "SP", "LGBT"})

	out, res := Unify(raw, testMapper())

	assert.Equal(t, schema.Master(), out.Columns())
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, 3, res.MappedColumns)
	assert.Equal(t, "Santos", out.Cell(0, schema.FieldMunicipio))
	assert.Equal(t, "SP", out.Cell(0, schema.FieldUFOcorrencia))
	assert.Equal(t, "LGBT", out.Cell(0, schema.FieldGrupoVulneravel))
	assert.Equal(t, frame.Missing, out.Cell(0, schema.FieldDataFato))
}

func TestUnify_NoRecognizedColumns(t *testing.T) {
	raw := frame.New([]string{"hash", "protocolo_interno"})
	raw.AppendRow([]string{"x", "1"})
	raw.AppendRow([]string{"y", "2"})
	raw.AppendRow([]string{"z", "3"})

	out, res := Unify(raw, testMapper())

	assert.Equal(t, schema.Master(), out.Columns())
	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, 0, res.MappedColumns)
	assert.Len(t, res.Dropped, 2)

	for i := 0; i < out.NumRows(); i++ {
		for _, field := range schema.Master() {
			assert.Equal(t, frame.Missing, out.Cell(i, field))
		}
	}
}

func TestUnify_MojibakeHeaders(t *testing.T) {
	raw := frame.New([]string{"Inã­cio das Violaã§ãµes", "Municã­pio da Vã­tima"})
	raw.AppendRow([]string{"2023-04-01", "Campinas"})

	out, _ := Unify(raw, testMapper())

	assert.Equal(t, "2023-04-01", out.Cell(0, schema.FieldDataFato))
	assert.Equal(t, "Campinas", out.Cell(0, schema.FieldMunicipio))
}

func TestUnify_FirstMappingWins(t *testing.T) {
	raw := frame.New([]string{"UF", "Estado"})
	raw.AppendRow([]string{"RJ", "Rio de Janeiro"})

	out, res := Unify(raw, testMapper())

	assert.Equal(t, "RJ", out.Cell(0, schema.FieldUFOcorrencia))
	assert.Equal(t, 1, res.MappedColumns)
}

func TestUnify_RowCountPreserved(t *testing.T) {
	raw := frame.New([]string{"Violação"})
	for i := 0; i < 100; i++ {
		raw.AppendRow([]string{"injúria"})
	}

	out, res := Unify(raw, testMapper())
	assert.Equal(t, 100, out.NumRows())
	assert.Equal(t, 100, res.Rows)
}
