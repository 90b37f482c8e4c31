package source

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dadosbr/segdata/internal/frame"
)

// SerieMensalFile is the date-indexed analysis table produced by
// SerieMensal.
const SerieMensalFile = "analise_seguranca_sp_rj.csv"

// serieColumns is the fixed output layout of the monthly series.
var serieColumns = []string{
	"data", "ano", "mes", "uf", "id_municipio",
	"homicidio_doloso", "roubo_veiculo", "furto_veiculo",
	"roubo_total", "furto_total",
}

// SerieMensal turns the consolidated crime table into a date-indexed
// monthly series: each row gains an ISO date anchored to the first of its
// month, and count blanks are zero-filled.
type SerieMensal struct{}

func (s *SerieMensal) Name() string { return "serie_mensal" }

func (s *SerieMensal) Stage() Stage { return StageClean }

func (s *SerieMensal) Process(ctx context.Context, env *Env) (*Result, error) {
	log := zap.L().With(zap.String("source", s.Name()))

	src := filepath.Join(env.Paths.Staging, SegurancaFile)
	f, err := frame.ReadFile(src, frame.ReadOptions{})
	if err != nil {
		return nil, eris.Wrap(err, "source: read consolidated series (run the seguranca source first)")
	}
	rowsIn := f.NumRows()

	if err := f.AddColumn("data"); err != nil {
		return nil, err
	}
	dataIdx := f.ColIndex("data")
	anoIdx := f.ColIndex("ano")
	mesIdx := f.ColIndex("mes")
	if anoIdx < 0 || mesIdx < 0 {
		return nil, eris.New("source: consolidated series missing ano or mes")
	}

	var badDates int
	for i := 0; i < f.NumRows(); i++ {
		row := f.Row(i)
		ano := parseIntOr(row[anoIdx], 0)
		mes := parseIntOr(row[mesIdx], 0)
		if ano == 0 || mes < 1 || mes > 12 {
			badDates++
			continue
		}
		row[dataIdx] = fmt.Sprintf("%04d-%02d-01", ano, mes)
	}
	if badDates > 0 {
		log.Warn("rows with unparseable year or month left dateless",
			zap.Int("rows", badDates))
	}

	out := f.Select(serieColumns)
	for _, col := range crimeColumns {
		idx := out.ColIndex(col)
		for i := 0; i < out.NumRows(); i++ {
			row := out.Row(i)
			row[idx] = formatInt(parseIntOr(row[idx], 0))
		}
	}

	dest := filepath.Join(env.Paths.Staging, SerieMensalFile)
	if err := frame.WriteFile(out, dest); err != nil {
		return nil, eris.Wrap(err, "source: write monthly series")
	}
	log.Info("monthly series written",
		zap.Int("rows", out.NumRows()),
		zap.String("path", dest))

	return &Result{
		RowsIn:  int64(rowsIn),
		RowsOut: int64(out.NumRows()),
		Outputs: []string{dest},
	}, nil
}
