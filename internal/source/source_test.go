package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadosbr/segdata/internal/frame"
	"github.com/dadosbr/segdata/internal/project"
	"github.com/dadosbr/segdata/internal/schema"
)

// testEnv builds a throwaway project layout under t.TempDir.
func testEnv(t *testing.T) *Env {
	t.Helper()
	root := t.TempDir()
	paths := &project.Paths{
		Root:    root,
		Raw:     filepath.Join(root, "dados_brutos"),
		Staging: filepath.Join(root, "dados_tratados"),
		Final:   filepath.Join(root, "dados_finais"),
	}
	for _, dir := range []string{paths.Raw, paths.Staging, paths.Final} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	return &Env{
		Paths:  paths,
		Mapper: schema.NewMapper(schema.DefaultRules()),
	}
}

func writeRaw(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readOutput(t *testing.T, path string) *frame.Frame {
	t.Helper()
	f, err := frame.ReadFile(path, frame.ReadOptions{})
	require.NoError(t, err)
	return f
}

func TestSegurancaConsolidates(t *testing.T) {
	env := testEnv(t)
	writeRaw(t, filepath.Join(env.Paths.Raw, "seguranca_publica", "br_rj_isp_estatisticas_seguranca_evolucao_mensal_municipio.csv"),
		"ano,mes,id_municipio,regiao,quantidade_homicidio_doloso,quantidade_roubo_veiculo,quantidade_furto_veiculos,quantidade_total_roubos,quantidade_total_furtos\n"+
			"2023,1,3304557,Capital,10,5,3,20,15\n"+
			"2023,2,3304557,Capital,8,,2,18,12\n")
	writeRaw(t, filepath.Join(env.Paths.Raw, "seguranca_publica", "br_sp_gov_ssp_ocorrencias_registradas.csv"),
		"ano,mes,id_municipio,homicidio_doloso,roubo_de_veiculo,roubo_outros,furto_de_veiculo,furto_outros\n"+
			"2023,1,3550308,12,7,30,4,40\n")

	res, err := (&Seguranca{}).Process(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.RowsOut)

	out := readOutput(t, filepath.Join(env.Paths.Staging, SegurancaFile))
	assert.Equal(t, segurancaColumns, out.Columns())

	// RJ rows first, blank count zero-filled, IDs truncated to 6 digits.
	assert.Equal(t, "RJ", out.Cell(0, "uf"))
	assert.Equal(t, "330455", out.Cell(0, "id_municipio"))
	assert.Equal(t, "0", out.Cell(1, "roubo_veiculo"))

	// SP totals are vehicle plus other buckets.
	assert.Equal(t, "SP", out.Cell(2, "uf"))
	assert.Equal(t, "37", out.Cell(2, "roubo_total"))
	assert.Equal(t, "44", out.Cell(2, "furto_total"))
	assert.Equal(t, "7", out.Cell(2, "roubo_veiculo"))
}

func TestSegurancaMissingColumnFails(t *testing.T) {
	env := testEnv(t)
	writeRaw(t, filepath.Join(env.Paths.Raw, "seguranca_publica", "br_rj_isp_estatisticas_seguranca.csv"),
		"ano,mes\n2023,1\n")
	writeRaw(t, filepath.Join(env.Paths.Raw, "seguranca_publica", "br_sp_gov_ssp_ocorrencias_registradas.csv"),
		"ano,mes\n2023,1\n")

	_, err := (&Seguranca{}).Process(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestSerieMensalBuildsDates(t *testing.T) {
	env := testEnv(t)
	writeRaw(t, filepath.Join(env.Paths.Staging, SegurancaFile),
		"ano,mes,id_municipio,uf,homicidio_doloso,roubo_veiculo,furto_veiculo,roubo_total,furto_total\n"+
			"2023,1,330455,RJ,10,5,3,20,15\n"+
			"2023,11,355030,SP,12,7,,37,44\n"+
			",3,330455,RJ,1,1,1,1,1\n")

	res, err := (&SerieMensal{}).Process(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.RowsOut)

	out := readOutput(t, filepath.Join(env.Paths.Staging, SerieMensalFile))
	assert.Equal(t, serieColumns, out.Columns())
	assert.Equal(t, "2023-01-01", out.Cell(0, "data"))
	assert.Equal(t, "2023-11-01", out.Cell(1, "data"))
	// Blank counts are zero-filled; a row without a year keeps its data
	// cell empty but is not dropped.
	assert.Equal(t, "0", out.Cell(1, "furto_veiculo"))
	assert.Equal(t, "", out.Cell(2, "data"))
}

func TestSerieMensalRequiresConsolidated(t *testing.T) {
	env := testEnv(t)
	_, err := (&SerieMensal{}).Process(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seguranca")
}

func TestDisque100FiltersAndUnifies(t *testing.T) {
	env := testEnv(t)
	writeRaw(t, filepath.Join(env.Paths.Raw, "disque100", "disque100_2023_1.csv"),
		"Início das Violações;UF;Município;Grupos Vulneráveis;Violação\n"+
			"15/03/2023;SP;São Paulo;População LGBTQIA+;Discriminação\n"+
			"2023-04-02;RIO DE JANEIRO;Niterói;Pessoa Idosa;Negligência\n"+
			"01/05/2023;BA;Salvador;População LGBT;Violência\n")
	writeRaw(t, filepath.Join(env.Paths.Raw, "disque100", "disque100_2023_2.csv"),
		"data_de_cadastro;uf;municipio;grupo_vulneravel\n"+
			"2023-07-10;RJ;Rio de Janeiro;Lésbicas\n")

	res, err := (&Disque100{}).Process(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.RowsIn)
	assert.Equal(t, int64(2), res.RowsOut)

	out := readOutput(t, filepath.Join(env.Paths.Staging, ViolenciaFile))
	assert.Equal(t, schema.Master(), out.Columns())

	// Dates are normalized to ISO and the year derived from them.
	assert.Equal(t, "2023-03-15", out.Cell(0, schema.FieldDataFato))
	assert.Equal(t, "2023", out.Cell(0, schema.FieldAnoFato))
	assert.Equal(t, "São Paulo", out.Cell(0, schema.FieldMunicipio))
	assert.Equal(t, "Rio de Janeiro", out.Cell(1, schema.FieldMunicipio))
}

func TestDisque100NoFilesFails(t *testing.T) {
	env := testEnv(t)
	_, err := (&Disque100{}).Process(context.Background(), env)
	require.Error(t, err)
}

func TestRegistryOrderAndSelect(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t,
		[]string{"mapeamento_regional", "disque100", "seguranca", "serie_mensal", "enriquecimento"},
		reg.AllNames())

	clean := StageClean
	sources, err := reg.Select(&clean, nil)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, "disque100", sources[0].Name())

	_, err = reg.Get("nope")
	require.Error(t, err)

	named, err := reg.Select(nil, []string{"enriquecimento"})
	require.NoError(t, err)
	require.Len(t, named, 1)
	assert.Equal(t, StageEnrich, named[0].Stage())
}

func TestParseStage(t *testing.T) {
	for _, name := range []string{"map", "clean", "enrich"} {
		st, err := ParseStage(name)
		require.NoError(t, err)
		assert.Equal(t, name, st.String())
	}
	_, err := ParseStage("bogus")
	require.Error(t, err)
}
