// Package fetcher downloads raw source files from the open-data portals
// with retry, rate limiting, and local-file validation.
package fetcher

import "context"

// Fetcher downloads remote files to local paths.
type Fetcher interface {
	// DownloadToFile fetches the URL and writes it to path. Returns bytes
	// written.
	DownloadToFile(ctx context.Context, url, path string) (int64, error)
}
