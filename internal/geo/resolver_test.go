package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadosbr/segdata/internal/frame"
)

func testDirectory() []DirectoryEntry {
	return []DirectoryEntry{
		{ID: "355030", Name: "São Paulo", UF: "SP"},
		{ID: "330455", Name: "Rio de Janeiro", UF: "RJ"},
		{ID: "330330", Name: "Niterói", UF: "RJ"},
	}
}

func TestBuildLookup_Basic(t *testing.T) {
	l := BuildLookup(testDirectory())
	require.Equal(t, 3, l.Len())
	assert.Empty(t, l.Collisions())

	id, ok := l.Get("SAO PAULO", "sp")
	require.True(t, ok)
	assert.Equal(t, "355030", id)

	id, ok = l.Get("Niterói", "RJ")
	require.True(t, ok)
	assert.Equal(t, "330330", id)

	_, ok = l.Get("Atlantis", "RJ")
	assert.False(t, ok)
}

func TestBuildLookup_CollisionKeepsFirstAndReports(t *testing.T) {
	entries := []DirectoryEntry{
		{ID: "111111", Name: "Bom Jesus", UF: "RJ"},
		{ID: "222222", Name: "BOM JESUS", UF: "RJ"},
		{ID: "333333", Name: "Bom Jesus", UF: "RJ"},
	}
	l := BuildLookup(entries)

	id, ok := l.Get("Bom Jesus", "RJ")
	require.True(t, ok)
	assert.Equal(t, "111111", id)

	require.Len(t, l.Collisions(), 1)
	c := l.Collisions()[0]
	assert.Equal(t, "111111", c.KeptID)
	assert.ElementsMatch(t, []string{"222222", "333333"}, c.LostIDs)
}

func TestBuildLookup_DuplicateSameIDNotACollision(t *testing.T) {
	entries := []DirectoryEntry{
		{ID: "355030", Name: "São Paulo", UF: "SP"},
		{ID: "355030", Name: "Sao Paulo", UF: "sp"},
	}
	l := BuildLookup(entries)
	assert.Empty(t, l.Collisions())
	assert.Equal(t, 1, l.Len())
}

func TestResolve_RateAndNullIDs(t *testing.T) {
	l := BuildLookup(testDirectory())

	target := frame.New([]string{"municipio", "uf"})
	target.AppendRow([]string{"São Paulo", "SP"})
	target.AppendRow([]string{"NITEROI", "RJ"})
	target.AppendRow([]string{"Cidade Fantasma", "RJ"})
	target.AppendRow([]string{"Rio de Janeiro", "RJ"})

	res, err := l.Resolve(target, "municipio", "uf", "id_municipio")
	require.NoError(t, err)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 3, res.Resolved)
	assert.InDelta(t, 0.75, res.Rate(), 1e-9)

	assert.Equal(t, "355030", target.Cell(0, "id_municipio"))
	assert.Equal(t, "330330", target.Cell(1, "id_municipio"))
	assert.Equal(t, frame.Missing, target.Cell(2, "id_municipio"))
	assert.Equal(t, "330455", target.Cell(3, "id_municipio"))
}

func TestResolution_RateEmpty(t *testing.T) {
	assert.Zero(t, Resolution{}.Rate())
}
