// Package source holds the pipeline stages that turn raw portal files into
// the staged and final analysis tables.
package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/dadosbr/segdata/internal/project"
	"github.com/dadosbr/segdata/internal/schema"
)

// Stage groups sources by pipeline position.
type Stage int

const (
	StageMap    Stage = iota + 1 // municipality/region directory
	StageClean                   // per-source cleaning and unification
	StageEnrich                  // cross-dataset joins and rates
)

// String returns the stage name used on the command line and in logs.
func (s Stage) String() string {
	switch s {
	case StageMap:
		return "map"
	case StageClean:
		return "clean"
	case StageEnrich:
		return "enrich"
	default:
		return "unknown"
	}
}

// ParseStage converts a stage name into a Stage.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "map":
		return StageMap, nil
	case "clean":
		return StageClean, nil
	case "enrich":
		return StageEnrich, nil
	default:
		return 0, eris.Errorf("unknown stage: %q (valid: map, clean, enrich)", s)
	}
}

// Env carries the shared dependencies a source needs to run.
type Env struct {
	Paths  *project.Paths
	Mapper *schema.Mapper
}

// Result holds the outcome of one source run.
type Result struct {
	RowsIn   int64
	RowsOut  int64
	Outputs  []string
	Metadata map[string]any
}

// Source is one pipeline step. Process reads its inputs from the project
// layout and writes its outputs; a missing required input aborts the step
// with no partial output written.
type Source interface {
	// Name returns the unique identifier for this source.
	Name() string

	// Stage returns the pipeline stage this source belongs to.
	Stage() Stage

	// Process runs the step end to end.
	Process(ctx context.Context, env *Env) (*Result, error)
}
