// Package frame provides the in-memory string table the pipeline stages
// exchange, plus CSV readers and writers for the source-file dialects
// (comma or semicolon delimited, UTF-8 or Latin-1 encoded, optionally
// gzip-compressed).
package frame

import (
	"github.com/rotisserie/eris"
)

// Missing is the sentinel written for absent values. CSV round-trips it as
// an empty cell.
const Missing = ""

// Frame is an ordered-column table of string cells. Rows are ragged-free:
// each row has exactly one cell per column.
type Frame struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// New creates an empty Frame with the given column order.
func New(cols []string) *Frame {
	f := &Frame{
		cols:  append([]string(nil), cols...),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range f.cols {
		f.index[c] = i
	}
	return f
}

// Columns returns the column names in order. Callers must not mutate the
// returned slice.
func (f *Frame) Columns() []string { return f.cols }

// NumRows returns the number of data rows.
func (f *Frame) NumRows() int { return len(f.rows) }

// HasColumn reports whether the frame has a column with the given name.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// AppendRow adds a row, padding or truncating to the column count so the
// frame never goes ragged.
func (f *Frame) AppendRow(row []string) {
	r := make([]string, len(f.cols))
	for i := range r {
		if i < len(row) {
			r[i] = row[i]
		} else {
			r[i] = Missing
		}
	}
	f.rows = append(f.rows, r)
}

// Row returns the i-th row. The returned slice is the backing storage;
// callers may mutate cells in place.
func (f *Frame) Row(i int) []string { return f.rows[i] }

// Cell returns the value at row i, column name. Missing columns yield the
// missing sentinel.
func (f *Frame) Cell(i int, name string) string {
	idx, ok := f.index[name]
	if !ok {
		return Missing
	}
	return f.rows[i][idx]
}

// SetCell writes the value at row i, column name.
func (f *Frame) SetCell(i int, name, value string) error {
	idx, ok := f.index[name]
	if !ok {
		return eris.Errorf("frame: unknown column %q", name)
	}
	f.rows[i][idx] = value
	return nil
}

// Col returns a copy of the named column, or an error if it is absent.
func (f *Frame) Col(name string) ([]string, error) {
	idx, ok := f.index[name]
	if !ok {
		return nil, eris.Errorf("frame: unknown column %q", name)
	}
	out := make([]string, len(f.rows))
	for i, r := range f.rows {
		out[i] = r[idx]
	}
	return out, nil
}

// AddColumn appends a new column filled with the missing sentinel. Adding
// an existing column is an error.
func (f *Frame) AddColumn(name string) error {
	if f.HasColumn(name) {
		return eris.Errorf("frame: column %q already exists", name)
	}
	f.index[name] = len(f.cols)
	f.cols = append(f.cols, name)
	for i := range f.rows {
		f.rows[i] = append(f.rows[i], Missing)
	}
	return nil
}

// Select returns a new Frame with exactly the requested columns in the
// requested order. Requested columns absent from the source are created
// filled with the missing sentinel; everything else is dropped. Row count
// is preserved.
func (f *Frame) Select(cols []string) *Frame {
	out := New(cols)
	for _, row := range f.rows {
		r := make([]string, len(cols))
		for j, c := range cols {
			if idx, ok := f.index[c]; ok {
				r[j] = row[idx]
			} else {
				r[j] = Missing
			}
		}
		out.rows = append(out.rows, r)
	}
	return out
}

// Filter returns a new Frame keeping rows for which keep returns true.
func (f *Frame) Filter(keep func(row []string) bool) *Frame {
	out := New(f.cols)
	for _, row := range f.rows {
		if keep(row) {
			out.rows = append(out.rows, append([]string(nil), row...))
		}
	}
	return out
}

// Concat appends all rows of other, aligning columns by name. Columns
// present only in other are ignored; columns absent from other are filled
// with the missing sentinel.
func (f *Frame) Concat(other *Frame) {
	for i := 0; i < other.NumRows(); i++ {
		r := make([]string, len(f.cols))
		for j, c := range f.cols {
			if idx, ok := other.index[c]; ok {
				r[j] = other.rows[i][idx]
			} else {
				r[j] = Missing
			}
		}
		f.rows = append(f.rows, r)
	}
}

// ColIndex returns the positional index of a column, or -1.
func (f *Frame) ColIndex(name string) int {
	if idx, ok := f.index[name]; ok {
		return idx
	}
	return -1
}
