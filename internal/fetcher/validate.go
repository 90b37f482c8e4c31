package fetcher

import (
	"os"
	"strings"
)

// htmlMarkers identify portal error pages served with a 200 status in
// place of the requested CSV.
var htmlMarkers = []string{"<!doctype", "<html", "<head", "<body"}

// ValidLocalFile reports whether a previously downloaded file at path looks
// like usable delimited data: it exists, meets the minimum size, is not an
// HTML error page, and contains at least one delimiter in its first bytes.
// The reason explains a false result.
func ValidLocalFile(path string, minSize int64) (bool, string) {
	info, err := os.Stat(path)
	if err != nil {
		return false, "file does not exist"
	}
	if info.Size() < minSize {
		return false, "file below minimum size"
	}

	fh, err := os.Open(path)
	if err != nil {
		return false, "file unreadable"
	}
	defer fh.Close()

	head := make([]byte, 2048)
	n, _ := fh.Read(head)
	probe := strings.ToLower(string(head[:n]))

	for _, marker := range htmlMarkers {
		if strings.Contains(probe, marker) {
			return false, "file is an HTML page, not CSV"
		}
	}
	if !strings.ContainsAny(probe, ",;") {
		return false, "file has no delimiter in first bytes"
	}

	return true, ""
}
