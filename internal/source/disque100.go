package source

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dadosbr/segdata/internal/frame"
	"github.com/dadosbr/segdata/internal/geo"
	"github.com/dadosbr/segdata/internal/schema"
	"github.com/dadosbr/segdata/internal/unify"
)

// ViolenciaFile is the unified Southeast LGBTQIA+ complaint table produced
// by Disque100.
const ViolenciaFile = "violencia_lgbtqia_disque100_sudeste.csv"

// lgbtPatterns selects complaints against the LGBTQIA+ population. Matched
// against the normalized vulnerable-group cell, so accents and casing in
// the raw exports do not matter.
var lgbtPatterns = []string{
	"LGBT",
	"GAY",
	"LESBICA",
	"TRAVESTI",
	"TRANSEXUAL",
	"BISSEXUAL",
}

// Disque100 unifies the Disque 100 hotline exports into a single table on
// the master schema, restricted to Southeast complaints against the
// LGBTQIA+ population. Each half-year export carries its own header
// vocabulary and encoding; the schema mapper reconciles them.
type Disque100 struct{}

func (s *Disque100) Name() string { return "disque100" }

func (s *Disque100) Stage() Stage { return StageClean }

func (s *Disque100) Process(ctx context.Context, env *Env) (*Result, error) {
	log := zap.L().With(zap.String("source", s.Name()))

	pattern := filepath.Join(env.Paths.Raw, "disque100", "*.csv")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, eris.Wrapf(err, "source: glob %s", pattern)
	}
	if len(paths) == 0 {
		return nil, eris.Errorf("source: no hotline exports under %s", filepath.Dir(pattern))
	}
	sort.Strings(paths)

	combined := frame.New(schema.Master())
	var rowsIn int64
	var filesRead int

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		raw, err := frame.ReadFile(path, frame.ReadOptions{})
		if err != nil {
			// A single broken export must not sink the whole series.
			log.Warn("skipping unreadable export",
				zap.String("path", path),
				zap.Error(err))
			continue
		}

		unified, res := unify.Unify(raw, env.Mapper)
		rowsIn += int64(res.Rows)
		filesRead++

		log.Debug("export unified",
			zap.String("file", filepath.Base(path)),
			zap.Int("rows", res.Rows),
			zap.Int("mapped_columns", res.MappedColumns),
			zap.Strings("dropped", res.Dropped))

		combined.Concat(unified)
	}
	if filesRead == 0 {
		return nil, eris.New("source: every hotline export failed to read")
	}

	ufIdx := combined.ColIndex(schema.FieldUFOcorrencia)
	grpIdx := combined.ColIndex(schema.FieldGrupoVulneravel)

	filtered := combined.Filter(func(row []string) bool {
		if !geo.IsSoutheast(row[ufIdx]) {
			return false
		}
		grp := schema.NormalizeValue(row[grpIdx])
		for _, p := range lgbtPatterns {
			if strings.Contains(grp, p) {
				return true
			}
		}
		return false
	})

	fillYearFromDate(filtered)

	dest := filepath.Join(env.Paths.Staging, ViolenciaFile)
	if err := frame.WriteFile(filtered, dest); err != nil {
		return nil, eris.Wrap(err, "source: write unified complaints")
	}
	log.Info("hotline exports unified",
		zap.Int("files", filesRead),
		zap.Int64("rows_in", rowsIn),
		zap.Int("rows_out", filtered.NumRows()),
		zap.String("path", dest))

	return &Result{
		RowsIn:  rowsIn,
		RowsOut: int64(filtered.NumRows()),
		Outputs: []string{dest},
		Metadata: map[string]any{
			"files": filesRead,
		},
	}, nil
}

// fillYearFromDate normalizes the occurrence date to ISO form and derives
// the year column from it when the export left the year blank. Unparseable
// dates are left as-is with the year missing.
func fillYearFromDate(f *frame.Frame) {
	dateIdx := f.ColIndex(schema.FieldDataFato)
	yearIdx := f.ColIndex(schema.FieldAnoFato)
	if dateIdx < 0 || yearIdx < 0 {
		return
	}
	for i := 0; i < f.NumRows(); i++ {
		row := f.Row(i)
		t, ok := parseDate(row[dateIdx])
		if !ok {
			continue
		}
		row[dateIdx] = t.Format("2006-01-02")
		if row[yearIdx] == frame.Missing {
			row[yearIdx] = t.Format("2006")
		}
	}
}
