package frame

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// WriteFile writes the frame as UTF-8 comma-separated text with a header
// row, creating parent directories as needed. The write goes through a
// temporary file and rename so a failure mid-write leaves no partial
// output.
func WriteFile(f *Frame, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "frame: create dir for %s", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".segdata-*")
	if err != nil {
		return eris.Wrapf(err, "frame: create temp for %s", path)
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(f.Columns()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return eris.Wrapf(err, "frame: write header %s", path)
	}
	for i := 0; i < f.NumRows(); i++ {
		if err := w.Write(f.Row(i)); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return eris.Wrapf(err, "frame: write row %d of %s", i, path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return eris.Wrapf(err, "frame: flush %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return eris.Wrapf(err, "frame: close %s", path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return eris.Wrapf(err, "frame: rename into %s", path)
	}
	return nil
}
