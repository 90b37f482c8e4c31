// Package unify conforms raw source tables to the master complaint schema.
package unify

import (
	"go.uber.org/zap"

	"github.com/dadosbr/segdata/internal/frame"
	"github.com/dadosbr/segdata/internal/schema"
)

// Result reports how a raw table was reconciled.
type Result struct {
	Rows          int
	MappedColumns int
	Dropped       []string // raw headers that matched no rule
}

// Unify maps every raw column through the mapper and returns a table whose
// column set and order is exactly the master schema. Unmapped source
// columns are dropped; master fields with no source column are filled with
// the missing sentinel. Row count is always preserved. If two source
// columns map to the same master field the first one wins.
func Unify(raw *frame.Frame, mapper *schema.Mapper) (*frame.Frame, *Result) {
	master := schema.Master()
	out := frame.New(master)

	// Master field -> raw column index.
	chosen := make(map[string]int, len(master))
	res := &Result{Rows: raw.NumRows()}

	for i, col := range raw.Columns() {
		field, ok := mapper.MapHeader(col)
		if !ok {
			res.Dropped = append(res.Dropped, col)
			continue
		}
		if _, taken := chosen[field]; taken {
			zap.L().Debug("unify: duplicate mapping ignored",
				zap.String("column", col),
				zap.String("field", field),
			)
			continue
		}
		chosen[field] = i
		res.MappedColumns++
	}

	for i := 0; i < raw.NumRows(); i++ {
		src := raw.Row(i)
		row := make([]string, len(master))
		for j, field := range master {
			if idx, ok := chosen[field]; ok {
				row[j] = src[idx]
			} else {
				row[j] = frame.Missing
			}
		}
		out.AppendRow(row)
	}

	return out, res
}
