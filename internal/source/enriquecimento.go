package source

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dadosbr/segdata/internal/frame"
	"github.com/dadosbr/segdata/internal/geo"
	"github.com/dadosbr/segdata/internal/schema"
)

// Final tables produced by Enriquecimento.
const (
	ViolenciaMunicipalFile = "analise_violencia_lgbtqia_municipal.csv"
	SegurancaMensalFile    = "analise_seguranca_sp_rj_mensal.csv"
)

// violenciaColumns is the fixed layout of the municipal complaint table.
var violenciaColumns = []string{
	"municipio_ocorrencia", "uf_ocorrencia", "sigla_uf",
	"total_denuncias", "chave_unica", "id_municipio",
	"populacao", "taxa_denuncias_100k_hab",
}

// Enriquecimento joins the staged complaint and crime tables against the
// IBGE population and municipality directory: complaints are aggregated
// per municipality, resolved to canonical IDs through the composite
// name+state key, and turned into rates per 100k inhabitants.
type Enriquecimento struct{}

func (s *Enriquecimento) Name() string { return "enriquecimento" }

func (s *Enriquecimento) Stage() Stage { return StageEnrich }

func (s *Enriquecimento) Process(ctx context.Context, env *Env) (*Result, error) {
	log := zap.L().With(zap.String("source", s.Name()))
	ibgeDir := filepath.Join(env.Paths.Raw, "ibge")

	pop, popYear, err := readPopulation(ibgeDir)
	if err != nil {
		return nil, eris.Wrap(err, "source: read population")
	}
	log.Info("population reference loaded",
		zap.String("ano", popYear),
		zap.Int("municipalities", len(pop)))

	lookup, err := readDirectory(ibgeDir)
	if err != nil {
		return nil, eris.Wrap(err, "source: read municipality directory")
	}

	violencia, err := s.enrichViolencia(env, pop, lookup, log)
	if err != nil {
		return nil, err
	}
	seguranca, err := s.enrichSeguranca(env, pop, log)
	if err != nil {
		return nil, err
	}

	return &Result{
		RowsIn:  violencia.rowsIn + seguranca.rowsIn,
		RowsOut: violencia.rowsOut + seguranca.rowsOut,
		Outputs: []string{violencia.path, seguranca.path},
		Metadata: map[string]any{
			"resolution_rate": violencia.resolutionRate,
			"populacao_ano":   popYear,
		},
	}, nil
}

type enrichOutcome struct {
	rowsIn         int64
	rowsOut        int64
	path           string
	resolutionRate float64
}

// enrichViolencia aggregates the unified complaint table per municipality,
// resolves IBGE IDs, and computes the per-100k complaint rate. Rows whose
// municipality cannot be resolved or has no population figure are dropped;
// the counts of both are logged.
func (s *Enriquecimento) enrichViolencia(env *Env, pop map[string]int64, lookup *geo.Lookup, log *zap.Logger) (*enrichOutcome, error) {
	src := filepath.Join(env.Paths.Staging, ViolenciaFile)
	f, err := frame.ReadFile(src, frame.ReadOptions{})
	if err != nil {
		return nil, eris.Wrap(err, "source: read unified complaints (run the disque100 source first)")
	}

	munIdx := f.ColIndex(schema.FieldMunicipio)
	ufIdx := f.ColIndex(schema.FieldUFOcorrencia)
	if munIdx < 0 || ufIdx < 0 {
		return nil, eris.New("source: complaint table missing municipality or state column")
	}

	// Aggregate complaint counts per (municipality, state) pair as the
	// exports spell them; normalization happens in the composite key.
	type group struct {
		municipio string
		uf        string
		count     int64
	}
	counts := make(map[string]*group)
	for i := 0; i < f.NumRows(); i++ {
		row := f.Row(i)
		if row[munIdx] == frame.Missing {
			continue
		}
		key := geo.CompositeKey(row[munIdx], row[ufIdx])
		g, ok := counts[key]
		if !ok {
			g = &group{municipio: row[munIdx], uf: row[ufIdx]}
			counts[key] = g
		}
		g.count++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := frame.New(violenciaColumns)
	var unresolved, noPopulation int
	var resolved int
	for _, key := range keys {
		g := counts[key]
		sigla, ok := geo.UFSigla(g.uf)
		if !ok {
			unresolved++
			continue
		}
		id, ok := lookup.Get(g.municipio, sigla)
		if !ok {
			unresolved++
			continue
		}
		resolved++
		p, ok := pop[id]
		if !ok || p == 0 {
			noPopulation++
			continue
		}
		rate := float64(g.count) / float64(p) * 100_000
		out.AppendRow([]string{
			g.municipio, g.uf, sigla,
			formatInt(g.count),
			geo.CompositeKey(g.municipio, sigla),
			id,
			formatInt(p),
			formatRate(rate),
		})
	}

	total := len(counts)
	rate := 0.0
	if total > 0 {
		rate = float64(resolved) / float64(total)
	}
	log.Info("complaint municipalities resolved",
		zap.Int("total", total),
		zap.Int("resolved", resolved),
		zap.Float64("rate", rate),
		zap.Int("unresolved_dropped", unresolved),
		zap.Int("no_population_dropped", noPopulation))

	dest := filepath.Join(env.Paths.Final, ViolenciaMunicipalFile)
	if err := frame.WriteFile(out, dest); err != nil {
		return nil, eris.Wrap(err, "source: write municipal complaint table")
	}

	return &enrichOutcome{
		rowsIn:         int64(f.NumRows()),
		rowsOut:        int64(out.NumRows()),
		path:           dest,
		resolutionRate: rate,
	}, nil
}

// enrichSeguranca joins the population reference onto the monthly crime
// series by municipality ID. Rows without a population figure are kept
// with the cell missing; the series must stay complete for gap analysis.
func (s *Enriquecimento) enrichSeguranca(env *Env, pop map[string]int64, log *zap.Logger) (*enrichOutcome, error) {
	src := filepath.Join(env.Paths.Staging, SerieMensalFile)
	f, err := frame.ReadFile(src, frame.ReadOptions{})
	if err != nil {
		return nil, eris.Wrap(err, "source: read monthly series (run the serie_mensal source first)")
	}
	rowsIn := f.NumRows()

	if err := f.AddColumn("populacao"); err != nil {
		return nil, err
	}
	idIdx := f.ColIndex("id_municipio")
	popIdx := f.ColIndex("populacao")
	if idIdx < 0 {
		return nil, eris.New("source: monthly series missing id_municipio")
	}

	var joined int
	for i := 0; i < f.NumRows(); i++ {
		row := f.Row(i)
		if p, ok := pop[row[idIdx]]; ok {
			row[popIdx] = formatInt(p)
			joined++
		}
	}
	log.Info("population joined onto monthly series",
		zap.Int("rows", f.NumRows()),
		zap.Int("joined", joined))

	dest := filepath.Join(env.Paths.Final, SegurancaMensalFile)
	if err := frame.WriteFile(f, dest); err != nil {
		return nil, eris.Wrap(err, "source: write enriched monthly series")
	}

	return &enrichOutcome{
		rowsIn:  int64(rowsIn),
		rowsOut: int64(f.NumRows()),
		path:    dest,
	}, nil
}

// readPopulation loads the IBGE population file and keeps the most recent
// year, keyed by six-digit municipality ID.
func readPopulation(dir string) (map[string]int64, string, error) {
	path, err := findOne(filepath.Join(dir, "br_ibge_populacao_municipio.csv*"))
	if err != nil {
		return nil, "", err
	}
	f, err := frame.ReadFile(path, frame.ReadOptions{})
	if err != nil {
		return nil, "", err
	}
	anoIdx := f.ColIndex("ano")
	idIdx := f.ColIndex("id_municipio")
	popIdx := f.ColIndex("populacao")
	if anoIdx < 0 || idIdx < 0 || popIdx < 0 {
		return nil, "", eris.New("source: population file missing ano, id_municipio or populacao")
	}

	var latest int64
	for i := 0; i < f.NumRows(); i++ {
		if y := parseIntOr(f.Row(i)[anoIdx], 0); y > latest {
			latest = y
		}
	}
	if latest == 0 {
		return nil, "", eris.New("source: population file has no usable year")
	}
	latestStr := formatInt(latest)

	pop := make(map[string]int64)
	for i := 0; i < f.NumRows(); i++ {
		row := f.Row(i)
		if parseIntOr(row[anoIdx], 0) != latest {
			continue
		}
		pop[canonID(row[idIdx])] = parseIntOr(row[popIdx], 0)
	}
	return pop, latestStr, nil
}

// readDirectory loads the municipality directory into a composite-key
// lookup.
func readDirectory(dir string) (*geo.Lookup, error) {
	path, err := findOne(filepath.Join(dir, "br_bd_diretorios_brasil_municipio.csv*"))
	if err != nil {
		return nil, err
	}
	f, err := frame.ReadFile(path, frame.ReadOptions{})
	if err != nil {
		return nil, err
	}
	idIdx := f.ColIndex("id_municipio")
	nomeIdx := f.ColIndex("nome")
	ufIdx := f.ColIndex("sigla_uf")
	if idIdx < 0 || nomeIdx < 0 || ufIdx < 0 {
		return nil, eris.New("source: directory file missing id_municipio, nome or sigla_uf")
	}

	entries := make([]geo.DirectoryEntry, 0, f.NumRows())
	for i := 0; i < f.NumRows(); i++ {
		row := f.Row(i)
		entries = append(entries, geo.DirectoryEntry{
			ID:   canonID(row[idIdx]),
			Name: row[nomeIdx],
			UF:   row[ufIdx],
		})
	}
	return geo.BuildLookup(entries), nil
}

// canonID truncates the 7-digit IBGE code (with check digit) to the
// 6-digit form used across the staged tables.
func canonID(id string) string {
	if len(id) == 7 {
		return id[:6]
	}
	return id
}
