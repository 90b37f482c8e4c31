package frame

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_AppendRowPads(t *testing.T) {
	f := New([]string{"a", "b", "c"})
	f.AppendRow([]string{"1"})
	f.AppendRow([]string{"1", "2", "3", "4"})

	require.Equal(t, 2, f.NumRows())
	assert.Equal(t, []string{"1", Missing, Missing}, f.Row(0))
	assert.Equal(t, []string{"1", "2", "3"}, f.Row(1))
}

func TestFrame_Select(t *testing.T) {
	f := New([]string{"x", "y"})
	f.AppendRow([]string{"1", "2"})
	f.AppendRow([]string{"3", "4"})

	out := f.Select([]string{"y", "z"})
	assert.Equal(t, []string{"y", "z"}, out.Columns())
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, []string{"2", Missing}, out.Row(0))
	assert.Equal(t, []string{"4", Missing}, out.Row(1))
}

func TestFrame_ConcatAlignsByName(t *testing.T) {
	f := New([]string{"a", "b"})
	f.AppendRow([]string{"1", "2"})

	g := New([]string{"b", "extra"})
	g.AppendRow([]string{"9", "ignored"})

	f.Concat(g)
	require.Equal(t, 2, f.NumRows())
	assert.Equal(t, []string{Missing, "9"}, f.Row(1))
}

func TestFrame_Filter(t *testing.T) {
	f := New([]string{"uf"})
	f.AppendRow([]string{"SP"})
	f.AppendRow([]string{"AM"})
	f.AppendRow([]string{"RJ"})

	out := f.Filter(func(row []string) bool { return row[0] != "AM" })
	assert.Equal(t, 3, f.NumRows())
	assert.Equal(t, 2, out.NumRows())
}

func TestFrame_AddColumn(t *testing.T) {
	f := New([]string{"a"})
	f.AppendRow([]string{"1"})
	require.NoError(t, f.AddColumn("b"))
	assert.Equal(t, []string{"1", Missing}, f.Row(0))
	assert.Error(t, f.AddColumn("b"))
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadFile_SniffsSemicolon(t *testing.T) {
	path := writeTemp(t, "in.csv", []byte("a;b\n1;2\n"))
	f, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.Columns())
	assert.Equal(t, "2", f.Cell(0, "b"))
}

func TestReadFile_Windows1252Fallback(t *testing.T) {
	// "Município" with 0xED for í. Invalid as UTF-8, decoded by the
	// fallback leg.
	data := []byte("Munic\xedpio,UF\nNiter\xf3i,RJ\n")
	path := writeTemp(t, "legacy.csv", data)

	f, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Município", "UF"}, f.Columns())
	assert.Equal(t, "Niterói", f.Cell(0, "Município"))
}

func TestReadFile_FallbackIsWindows1252(t *testing.T) {
	// 0x93/0x94 are curly quotes in Windows-1252 but C1 control bytes in
	// Latin-1; the fallback must pick the former.
	data := []byte("nome\n\x93S\xe3o Paulo\x94\n")
	path := writeTemp(t, "quotes.csv", data)

	f, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "“São Paulo”", f.Cell(0, "nome"))
}

func TestReadFile_ForcedEncoding(t *testing.T) {
	data := []byte("nome\nS\xe3o Paulo\n")
	path := writeTemp(t, "forced.csv", data)

	f, err := ReadFile(path, ReadOptions{Encoding: "latin-1"})
	require.NoError(t, err)
	assert.Equal(t, "São Paulo", f.Cell(0, "nome"))
}

func TestReadFile_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv.gz")
	fh, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(fh)
	_, err = zw.Write([]byte("id,populacao\n355030,11451000\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, fh.Close())

	f, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "11451000", f.Cell(0, "populacao"))
}

func TestReadFile_MissingFile(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), ReadOptions{})
	assert.Error(t, err)
}

func TestReadFile_DuplicateHeaders(t *testing.T) {
	path := writeTemp(t, "dup.csv", []byte("a,a,a\n1,2,3\n"))
	f, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a_2", "a_3"}, f.Columns())
}

func TestWriteFile_RoundTrip(t *testing.T) {
	f := New([]string{"id", "nome"})
	f.AppendRow([]string{"330455", "Rio de Janeiro"})
	f.AppendRow([]string{"355030", "São Paulo"})

	path := filepath.Join(t.TempDir(), "out", "dados.csv")
	require.NoError(t, WriteFile(f, path))

	got, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, f.Columns(), got.Columns())
	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, "São Paulo", got.Cell(1, "nome"))
}
