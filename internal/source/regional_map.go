package source

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/dadosbr/segdata/internal/frame"
	"github.com/dadosbr/segdata/internal/geo"
	"github.com/dadosbr/segdata/internal/schema"
)

// MapeamentoFile is the municipality-to-region map produced by RegionalMap.
const MapeamentoFile = "mapeamento_municipio_regiao.csv"

// RegionalMap builds the municipality/region reference table for SP and RJ.
// The IBGE territorial directory supplies every municipality with its
// intermediate geographic region; for RJ the ISP's own region labels
// override IBGE's, since the security series is published against them.
type RegionalMap struct{}

func (s *RegionalMap) Name() string { return "mapeamento_regional" }

func (s *RegionalMap) Stage() Stage { return StageMap }

func (s *RegionalMap) Process(ctx context.Context, env *Env) (*Result, error) {
	log := zap.L().With(zap.String("source", s.Name()))

	dtbPath, err := findOne(filepath.Join(env.Paths.Raw, "RELATORIO_DTB_*.xlsx"))
	if err != nil {
		return nil, eris.Wrap(err, "source: locate IBGE territorial directory")
	}

	rows, err := readDTB(dtbPath)
	if err != nil {
		return nil, eris.Wrap(err, "source: read IBGE territorial directory")
	}
	rowsIn := len(rows)

	ispRegions, err := readISPRegions(filepath.Join(env.Paths.Raw, "seguranca_publica"))
	if err != nil {
		log.Warn("ISP region file unavailable, keeping IBGE regions for RJ", zap.Error(err))
	}

	out := frame.New([]string{"id_municipio", "nome_municipio", "uf", "regiao"})
	for _, r := range rows {
		if r.uf != "SP" && r.uf != "RJ" {
			continue
		}
		regiao := r.regiao
		if r.uf == "RJ" {
			if override, ok := ispRegions[r.id]; ok {
				regiao = override
			}
		}
		out.AppendRow([]string{r.id, r.nome, r.uf, regiao})
	}

	dest := filepath.Join(env.Paths.Staging, MapeamentoFile)
	if err := frame.WriteFile(out, dest); err != nil {
		return nil, eris.Wrap(err, "source: write regional map")
	}
	log.Info("regional map written",
		zap.Int("municipalities", out.NumRows()),
		zap.String("path", dest))

	return &Result{
		RowsIn:  int64(rowsIn),
		RowsOut: int64(out.NumRows()),
		Outputs: []string{dest},
	}, nil
}

type dtbRow struct {
	id     string // 6-digit IBGE code
	nome   string
	uf     string
	regiao string
}

// readDTB parses the IBGE DTB workbook. Headers are matched after
// normalization so accent or encoding drift between editions does not
// break column discovery.
func readDTB(path string) ([]dtbRow, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open workbook %s", filepath.Base(path))
	}
	if len(wb.Sheets) == 0 {
		return nil, eris.New("source: workbook has no sheets")
	}
	sheet := wb.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, eris.New("source: workbook sheet has no data rows")
	}

	// The 2024 edition carries a title row above the header; scan the
	// first few rows for the one carrying the municipality name column.
	headerIdx := -1
	var colIdx map[string]int
	for i := 0; i < len(sheet.Rows) && i < 5; i++ {
		idx := map[string]int{}
		for j, cell := range sheet.Rows[i].Cells {
			idx[schema.NormalizeHeader(cell.String())] = j
		}
		if _, ok := idx["nome_municipio"]; ok {
			headerIdx = i
			colIdx = idx
			break
		}
	}
	if headerIdx < 0 {
		return nil, eris.New("source: municipality header not found in workbook")
	}

	want := []string{"uf", "nome_uf", "nome_regiao_geografica_intermediaria", "codigo_municipio_completo", "nome_municipio"}
	for _, w := range want {
		if _, ok := colIdx[w]; !ok {
			return nil, eris.Errorf("source: workbook missing column %q", w)
		}
	}

	cell := func(row *xlsx.Row, name string) string {
		j := colIdx[name]
		if j >= len(row.Cells) {
			return ""
		}
		return strings.TrimSpace(row.Cells[j].String())
	}

	var rows []dtbRow
	for _, row := range sheet.Rows[headerIdx+1:] {
		code := cell(row, "codigo_municipio_completo")
		if len(code) < 7 {
			continue
		}
		uf := ufFromDTB(cell(row, "uf"), cell(row, "nome_uf"))
		rows = append(rows, dtbRow{
			id:     code[:6],
			nome:   cell(row, "nome_municipio"),
			uf:     uf,
			regiao: cell(row, "nome_regiao_geografica_intermediaria"),
		})
	}
	return rows, nil
}

// ufFromDTB resolves the state abbreviation from whichever of the UF
// columns carries usable text. Some editions put the sigla in "UF",
// others a numeric code with the full name in "Nome_UF".
func ufFromDTB(uf, nomeUF string) string {
	if sigla, ok := geo.UFSigla(uf); ok {
		return sigla
	}
	if sigla, ok := geo.UFSigla(nomeUF); ok {
		return sigla
	}
	return ""
}

// readISPRegions extracts the ISP's municipality-to-region labels from the
// RJ monthly series, deduplicated by municipality id.
func readISPRegions(dir string) (map[string]string, error) {
	path, err := findOne(filepath.Join(dir, "br_rj_isp_estatisticas_seguranca*.csv"))
	if err != nil {
		return nil, err
	}
	f, err := frame.ReadFile(path, frame.ReadOptions{})
	if err != nil {
		return nil, err
	}
	idCol, regCol := f.ColIndex("id_municipio"), f.ColIndex("regiao")
	if idCol < 0 || regCol < 0 {
		return nil, eris.New("source: ISP file missing id_municipio or regiao column")
	}
	regions := make(map[string]string)
	for i := 0; i < f.NumRows(); i++ {
		row := f.Row(i)
		id, reg := canonID(row[idCol]), row[regCol]
		if id == "" || reg == "" {
			continue
		}
		if _, ok := regions[id]; !ok {
			regions[id] = reg
		}
	}
	return regions, nil
}

// findOne resolves a glob to exactly one path, preferring the
// lexically last match when several editions are present.
func findOne(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", eris.Wrapf(err, "source: glob %s", pattern)
	}
	if len(matches) == 0 {
		return "", eris.Errorf("source: no file matches %s", pattern)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
