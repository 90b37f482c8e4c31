package frame

import (
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ReadOptions configures the CSV reader.
type ReadOptions struct {
	Delimiter rune   // 0 = sniff from the header line
	Encoding  string // "utf-8", "latin-1", "windows-1252"; "" = fallback chain
}

// fallbackEncodings is the fixed sequence tried when no encoding is forced.
// Windows-1252 accepts every byte sequence, so it terminates the chain; it
// supersets Latin-1 on the printable range and is what the portals actually
// serve. Latin-1 stays available as a forced option.
var fallbackEncodings = []string{"utf-8", "windows-1252"}

// ReadFile loads a delimited text file into a Frame. Files ending in .gz
// are decompressed transparently. The first record is the header; repeated
// or empty header names are disambiguated positionally.
func ReadFile(path string, opts ReadOptions) (*Frame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "frame: read %s", path)
	}

	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, eris.Wrapf(err, "frame: gunzip %s", path)
		}
		raw, err = io.ReadAll(zr)
		if err != nil {
			return nil, eris.Wrapf(err, "frame: gunzip %s", path)
		}
	}

	decoded, enc, err := decode(raw, opts.Encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "frame: decode %s", path)
	}
	if enc != "utf-8" {
		zap.L().Debug("frame: decoded with fallback encoding",
			zap.String("path", path),
			zap.String("encoding", enc),
		)
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(decoded)
	}

	return parseCSV(decoded, delim)
}

// decode converts raw bytes to UTF-8 text using the forced encoding, or the
// fallback chain when none is forced. Returns the text and the encoding
// that succeeded.
func decode(raw []byte, forced string) (string, string, error) {
	chain := fallbackEncodings
	if forced != "" {
		chain = []string{forced}
	}

	var lastErr error
	for _, name := range chain {
		enc, err := lookupEncoding(name)
		if err != nil {
			return "", "", err
		}
		if enc == nil { // utf-8
			if utf8.Valid(raw) {
				return string(raw), name, nil
			}
			lastErr = eris.New("invalid UTF-8 byte sequence")
			continue
		}
		out, _, err := transform.Bytes(enc.NewDecoder(), raw)
		if err != nil {
			lastErr = err
			continue
		}
		return string(out), name, nil
	}

	return "", "", eris.Wrap(lastErr, "frame: all encodings exhausted")
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, eris.Errorf("frame: unsupported encoding %q", name)
	}
}

// sniffDelimiter inspects the first line and picks whichever of ';' and ','
// occurs more often. Ties go to the comma.
func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func parseCSV(text string, delim rune) (*Frame, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, eris.New("frame: empty file")
	}
	if err != nil {
		return nil, eris.Wrap(err, "frame: read header")
	}

	f := New(dedupeHeader(header))

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows are skipped; source exports routinely carry a
			// few broken lines.
			continue
		}
		f.AppendRow(record)
	}

	return f, nil
}

// dedupeHeader makes header names unique by suffixing repeats with their
// ordinal, so the column index stays total.
func dedupeHeader(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			out[i] = h + "_" + strconv.Itoa(n+1)
		} else {
			seen[h] = 1
			out[i] = h
		}
	}
	return out
}
