package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/dadosbr/segdata/internal/project"
	"github.com/dadosbr/segdata/internal/runlog"
	"github.com/dadosbr/segdata/internal/schema"
	"github.com/dadosbr/segdata/internal/source"
)

// discoverPaths locates the project root from the working directory using
// the configured layout.
func discoverPaths() (*project.Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, eris.Wrap(err, "get working directory")
	}
	return project.Discover(wd, cfg.Project.RawDir, cfg.Project.StagingDir, cfg.Project.FinalDir)
}

// openRunLog opens the run log at its configured path, relative to the
// project root.
func openRunLog(paths *project.Paths) (*runlog.Log, error) {
	path := cfg.RunLog.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(paths.Root, path)
	}
	return runlog.Open(path)
}

// buildEnv assembles the shared source environment, creating the output
// directories.
func buildEnv(paths *project.Paths) (*source.Env, error) {
	if err := paths.EnsureStaging(); err != nil {
		return nil, err
	}
	if err := paths.EnsureFinal(); err != nil {
		return nil, err
	}
	return &source.Env{
		Paths:  paths,
		Mapper: schema.NewMapper(schema.DefaultRules()),
	}, nil
}
