// Package project locates the data directory layout shared by every
// pipeline stage: raw inputs under dados_brutos, cleaned intermediates
// under dados_tratados, enriched outputs under dados_finais.
package project

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Default directory names under the project root.
const (
	DefaultRawDir     = "dados_brutos"
	DefaultStagingDir = "dados_tratados"
	DefaultFinalDir   = "dados_finais"
)

// maxAscent bounds the upward walk during root discovery.
const maxAscent = 4

// Paths holds the resolved stage directories for one pipeline run.
type Paths struct {
	Root    string
	Raw     string
	Staging string
	Final   string
}

// Discover walks upward from start until it finds a directory containing
// rawDir, then resolves the full layout. Staging and final directories are
// created on demand; the raw directory must already exist.
func Discover(start, rawDir, stagingDir, finalDir string) (*Paths, error) {
	if rawDir == "" {
		rawDir = DefaultRawDir
	}
	if stagingDir == "" {
		stagingDir = DefaultStagingDir
	}
	if finalDir == "" {
		finalDir = DefaultFinalDir
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, eris.Wrapf(err, "project: resolve %s", start)
	}

	dir := abs
	for i := 0; i <= maxAscent; i++ {
		candidate := filepath.Join(dir, rawDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return &Paths{
				Root:    dir,
				Raw:     candidate,
				Staging: filepath.Join(dir, stagingDir),
				Final:   filepath.Join(dir, finalDir),
			}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return nil, eris.Errorf("project: %s not found walking up from %s", rawDir, abs)
}

// EnsureStaging creates the staging directory if absent.
func (p *Paths) EnsureStaging() error {
	return eris.Wrap(os.MkdirAll(p.Staging, 0o755), "project: create staging dir")
}

// EnsureFinal creates the final directory if absent.
func (p *Paths) EnsureFinal() error {
	return eris.Wrap(os.MkdirAll(p.Final, 0o755), "project: create final dir")
}
