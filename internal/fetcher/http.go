package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RatePerSec float64 // requests per second against the portal
}

// HTTPFetcher implements Fetcher using net/http with retry and a global
// rate limiter. The portals serving these files are small government
// boxes; one polite request at a time is the point, not throughput.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "segdata/1.0"
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 1
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
	}
}

// DownloadToFile fetches the URL into path, creating parent directories.
// Retries with exponential backoff and jitter on transport errors and 5xx
// responses. The body lands in a temporary file renamed into place on
// success, so an interrupted download never leaves a partial file behind.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, url, path string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, eris.Wrapf(err, "fetcher: create dir for %s", path)
	}

	var lastErr error
	for attempt := 0; attempt <= f.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			backoff += time.Duration(rand.Int63n(int64(time.Second)))
			zap.L().Debug("fetcher: retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, eris.Wrap(ctx.Err(), "fetcher: cancelled during backoff")
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return 0, eris.Wrap(err, "fetcher: rate limiter")
		}

		n, err := f.downloadOnce(ctx, url, path)
		if err == nil {
			return n, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return 0, eris.Wrap(ctx.Err(), "fetcher: cancelled")
		}
	}

	return 0, eris.Wrapf(lastErr, "fetcher: %s after %d attempts", url, f.opts.MaxRetries+1)
}

func (f *HTTPFetcher) downloadOnce(ctx context.Context, url, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "fetcher: build request %s", url)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, eris.Wrapf(err, "fetcher: GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, eris.Errorf("fetcher: GET %s: status %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return 0, eris.Wrapf(err, "fetcher: create temp for %s", path)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, eris.Wrapf(err, "fetcher: write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, eris.Wrapf(err, "fetcher: close %s", path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, eris.Wrapf(err, "fetcher: rename into %s", path)
	}
	return n, nil
}
