// Package quality computes data-quality diagnostics over staged tables:
// per-column fill rates and coverage checks on the monthly crime series.
package quality

import (
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/dadosbr/segdata/internal/frame"
)

// FieldFill is the fill rate of one column.
type FieldFill struct {
	Column string
	Filled int
	Total  int
}

// Rate returns the filled fraction, 1 for an empty table.
func (f FieldFill) Rate() float64 {
	if f.Total == 0 {
		return 1
	}
	return float64(f.Filled) / float64(f.Total)
}

// FillRates reports, in column order, how many cells of each column are
// non-missing.
func FillRates(f *frame.Frame) []FieldFill {
	out := make([]FieldFill, 0, len(f.Columns()))
	for idx, col := range f.Columns() {
		ff := FieldFill{Column: col, Total: f.NumRows()}
		for i := 0; i < f.NumRows(); i++ {
			if f.Row(i)[idx] != frame.Missing {
				ff.Filled++
			}
		}
		out = append(out, ff)
	}
	return out
}

// YearCoverage counts the distinct months with data for one state and year.
// Twelve means a complete year.
type YearCoverage struct {
	UF     string
	Year   string
	Months int
}

// ZeroMonth flags a month whose statewide homicide total is zero. A true
// zero across every municipality of a state is implausible and usually
// means the portal had not published that month yet.
type ZeroMonth struct {
	UF   string
	Data string
}

// SeriesReport is the outcome of diagnosing the monthly crime series.
type SeriesReport struct {
	Rows       int
	Coverage   []YearCoverage
	ZeroMonths []ZeroMonth
}

// DiagnoseSeries inspects a date-indexed crime series (data, uf,
// homicidio_doloso columns) for coverage gaps and implausible zero months.
func DiagnoseSeries(f *frame.Frame) (*SeriesReport, error) {
	dataIdx := f.ColIndex("data")
	ufIdx := f.ColIndex("uf")
	homIdx := f.ColIndex("homicidio_doloso")
	if dataIdx < 0 || ufIdx < 0 || homIdx < 0 {
		return nil, eris.New("quality: series is missing data, uf or homicidio_doloso")
	}

	type monthKey struct{ uf, data string }
	homicides := make(map[monthKey]int64)
	months := make(map[string]map[string]map[string]bool) // uf -> year -> month set

	rows := 0
	for i := 0; i < f.NumRows(); i++ {
		row := f.Row(i)
		data, uf := row[dataIdx], row[ufIdx]
		if data == frame.Missing || len(data) < 7 {
			continue
		}
		rows++
		year, month := data[:4], data[5:7]

		if _, ok := months[uf]; !ok {
			months[uf] = make(map[string]map[string]bool)
		}
		if _, ok := months[uf][year]; !ok {
			months[uf][year] = make(map[string]bool)
		}
		months[uf][year][month] = true

		n, _ := strconv.ParseInt(row[homIdx], 10, 64)
		homicides[monthKey{uf, data}] += n
	}

	report := &SeriesReport{Rows: rows}

	for uf, years := range months {
		for year, set := range years {
			report.Coverage = append(report.Coverage, YearCoverage{UF: uf, Year: year, Months: len(set)})
		}
	}
	sort.Slice(report.Coverage, func(i, j int) bool {
		a, b := report.Coverage[i], report.Coverage[j]
		if a.UF != b.UF {
			return a.UF < b.UF
		}
		return a.Year < b.Year
	})

	for key, total := range homicides {
		if total == 0 {
			report.ZeroMonths = append(report.ZeroMonths, ZeroMonth{UF: key.uf, Data: key.data})
		}
	}
	sort.Slice(report.ZeroMonths, func(i, j int) bool {
		a, b := report.ZeroMonths[i], report.ZeroMonths[j]
		if a.UF != b.UF {
			return a.UF < b.UF
		}
		return a.Data < b.Data
	})

	return report, nil
}
