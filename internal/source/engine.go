package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dadosbr/segdata/internal/runlog"
)

// Engine orchestrates source runs, recording each in the run log.
type Engine struct {
	reg *Registry
	log *runlog.Log
	env *Env
}

// RunOpts configures which sources to run and how.
type RunOpts struct {
	Stage   *Stage   // restrict to a specific stage
	Sources []string // restrict to specific source names
	Force   bool     // rerun sources that already completed
}

// NewEngine creates a new pipeline engine.
func NewEngine(reg *Registry, log *runlog.Log, env *Env) *Engine {
	return &Engine{reg: reg, log: log, env: env}
}

// Run executes the selected sources in order. A failing source is recorded
// and the run continues with the remaining sources; the first error is
// returned at the end so the exit code reflects the failure.
func (e *Engine) Run(ctx context.Context, opts RunOpts) error {
	log := zap.L().With(zap.String("component", "engine"))

	sources, err := e.reg.Select(opts.Stage, opts.Sources)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		log.Info("no sources selected")
		return nil
	}

	var firstErr error
	var completed, skipped, failed int

	for _, s := range sources {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sLog := log.With(zap.String("source", s.Name()), zap.String("stage", s.Stage().String()))

		if !opts.Force {
			last, err := e.log.LastSuccess(ctx, s.Name())
			if err != nil {
				return eris.Wrapf(err, "engine: check last run for %s", s.Name())
			}
			if last != nil {
				sLog.Debug("skipping (already completed, use --force to rerun)")
				skipped++
				continue
			}
		}

		sLog.Info("starting")
		runID, err := e.log.Start(ctx, s.Name())
		if err != nil {
			return eris.Wrapf(err, "engine: start run log for %s", s.Name())
		}

		start := time.Now()
		result, err := s.Process(ctx, e.env)
		elapsed := time.Since(start)

		if err != nil {
			sLog.Error("failed", zap.Error(err), zap.Duration("elapsed", elapsed))
			if logErr := e.log.Fail(ctx, runID, err.Error()); logErr != nil {
				sLog.Error("failed to record failure", zap.Error(logErr))
			}
			failed++
			if firstErr == nil {
				firstErr = eris.Wrapf(err, "engine: source %s", s.Name())
			}
			continue
		}

		if err := e.log.Complete(ctx, runID, result.RowsOut, result.Metadata); err != nil {
			sLog.Error("failed to record completion", zap.Error(err))
		}

		sLog.Info("complete",
			zap.Int64("rows_in", result.RowsIn),
			zap.Int64("rows_out", result.RowsOut),
			zap.Strings("outputs", result.Outputs),
			zap.Duration("elapsed", elapsed),
		)
		completed++
	}

	log.Info("run complete",
		zap.Int("completed", completed),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return firstErr
}
