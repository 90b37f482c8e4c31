package source

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dadosbr/segdata/internal/frame"
)

// SegurancaFile is the consolidated SP+RJ monthly crime table produced by
// Seguranca.
const SegurancaFile = "seguranca_publica_sp_rj_consolidado.csv"

// segurancaColumns is the fixed output layout of the consolidated table.
var segurancaColumns = []string{
	"ano", "mes", "id_municipio", "uf",
	"homicidio_doloso", "roubo_veiculo", "furto_veiculo",
	"roubo_total", "furto_total",
}

// crimeColumns are the count columns coerced to integers on output.
var crimeColumns = segurancaColumns[4:]

// Seguranca consolidates the RJ (ISP) and SP (SSP) monthly municipal crime
// series into one table with a shared vocabulary. The two portals publish
// incompatible column sets; SP splits robbery and theft into vehicle and
// "other" buckets, so its totals are the sum of both.
type Seguranca struct{}

func (s *Seguranca) Name() string { return "seguranca" }

func (s *Seguranca) Stage() Stage { return StageClean }

func (s *Seguranca) Process(ctx context.Context, env *Env) (*Result, error) {
	log := zap.L().With(zap.String("source", s.Name()))
	dir := filepath.Join(env.Paths.Raw, "seguranca_publica")

	rj, err := readRJ(dir)
	if err != nil {
		return nil, eris.Wrap(err, "source: read RJ series")
	}
	sp, err := readSP(dir)
	if err != nil {
		return nil, eris.Wrap(err, "source: read SP series")
	}
	rowsIn := int64(rj.NumRows() + sp.NumRows())

	out := frame.New(segurancaColumns)
	out.Concat(rj)
	out.Concat(sp)

	// Portal IDs carry the IBGE check digit; staged tables use the
	// six-digit form throughout.
	idIdx := out.ColIndex("id_municipio")
	for i := 0; i < out.NumRows(); i++ {
		row := out.Row(i)
		row[idIdx] = canonID(row[idIdx])
	}

	// Missing counts become zero so downstream arithmetic never sees
	// blanks.
	for _, col := range crimeColumns {
		idx := out.ColIndex(col)
		for i := 0; i < out.NumRows(); i++ {
			row := out.Row(i)
			row[idx] = formatInt(parseIntOr(row[idx], 0))
		}
	}

	dest := filepath.Join(env.Paths.Staging, SegurancaFile)
	if err := frame.WriteFile(out, dest); err != nil {
		return nil, eris.Wrap(err, "source: write consolidated series")
	}
	log.Info("crime series consolidated",
		zap.Int("rj_rows", rj.NumRows()),
		zap.Int("sp_rows", sp.NumRows()),
		zap.String("path", dest))

	return &Result{
		RowsIn:  rowsIn,
		RowsOut: int64(out.NumRows()),
		Outputs: []string{dest},
	}, nil
}

// readRJ loads the ISP monthly series and renames its columns to the
// shared vocabulary.
func readRJ(dir string) (*frame.Frame, error) {
	path, err := findOne(filepath.Join(dir, "br_rj_isp_estatisticas_seguranca*.csv"))
	if err != nil {
		return nil, err
	}
	f, err := frame.ReadFile(path, frame.ReadOptions{})
	if err != nil {
		return nil, err
	}

	renames := map[string]string{
		"ano":                         "ano",
		"mes":                         "mes",
		"id_municipio":                "id_municipio",
		"quantidade_homicidio_doloso": "homicidio_doloso",
		"quantidade_roubo_veiculo":    "roubo_veiculo",
		"quantidade_furto_veiculos":   "furto_veiculo",
		"quantidade_total_roubos":     "roubo_total",
		"quantidade_total_furtos":     "furto_total",
	}
	out, err := renameColumns(f, renames, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	if err := out.AddColumn("uf"); err != nil {
		return nil, err
	}
	ufIdx := out.ColIndex("uf")
	for i := 0; i < out.NumRows(); i++ {
		out.Row(i)[ufIdx] = "RJ"
	}
	return out, nil
}

// readSP loads the SSP occurrence series, renames its columns, and derives
// the robbery and theft totals from the vehicle and "other" buckets.
func readSP(dir string) (*frame.Frame, error) {
	path, err := findOne(filepath.Join(dir, "br_sp_gov_ssp_ocorrencias_registradas*.csv"))
	if err != nil {
		return nil, err
	}
	f, err := frame.ReadFile(path, frame.ReadOptions{})
	if err != nil {
		return nil, err
	}

	renames := map[string]string{
		"ano":              "ano",
		"mes":              "mes",
		"id_municipio":     "id_municipio",
		"homicidio_doloso": "homicidio_doloso",
		"roubo_de_veiculo": "roubo_veiculo",
		"furto_de_veiculo": "furto_veiculo",
	}
	out, err := renameColumns(f, renames, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	rouboOutros := f.ColIndex("roubo_outros")
	furtoOutros := f.ColIndex("furto_outros")
	if rouboOutros < 0 || furtoOutros < 0 {
		return nil, eris.Errorf("source: %s missing roubo_outros or furto_outros", filepath.Base(path))
	}

	for _, col := range []string{"roubo_total", "furto_total", "uf"} {
		if err := out.AddColumn(col); err != nil {
			return nil, err
		}
	}
	rvIdx := out.ColIndex("roubo_veiculo")
	fvIdx := out.ColIndex("furto_veiculo")
	rtIdx := out.ColIndex("roubo_total")
	ftIdx := out.ColIndex("furto_total")
	ufIdx := out.ColIndex("uf")

	for i := 0; i < out.NumRows(); i++ {
		src := f.Row(i)
		row := out.Row(i)
		row[rtIdx] = formatInt(parseIntOr(row[rvIdx], 0) + parseIntOr(src[rouboOutros], 0))
		row[ftIdx] = formatInt(parseIntOr(row[fvIdx], 0) + parseIntOr(src[furtoOutros], 0))
		row[ufIdx] = "SP"
	}
	return out, nil
}

// renameColumns selects the mapped source columns under their new names,
// preserving row order. A missing source column is an error naming the
// offending file.
func renameColumns(f *frame.Frame, renames map[string]string, file string) (*frame.Frame, error) {
	for src := range renames {
		if !f.HasColumn(src) {
			return nil, eris.Errorf("source: %s missing column %q", file, src)
		}
	}
	// Selection order follows the shared output layout.
	var srcCols, dstCols []string
	for _, dst := range segurancaColumns {
		for src, d := range renames {
			if d == dst {
				srcCols = append(srcCols, src)
				dstCols = append(dstCols, dst)
			}
		}
	}
	return renamed(f.Select(srcCols), dstCols), nil
}

// renamed returns a view of f with its columns relabeled positionally.
func renamed(f *frame.Frame, cols []string) *frame.Frame {
	out := frame.New(cols)
	for i := 0; i < f.NumRows(); i++ {
		out.AppendRow(f.Row(i))
	}
	return out
}
