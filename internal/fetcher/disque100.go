package fetcher

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Disque100File identifies one semester export on the MDH open-data portal.
type Disque100File struct {
	Tag   string // e.g. "2023_1"
	Label string
	URL   string
}

// Disque100Files lists the published semester exports, oldest first.
func Disque100Files() []Disque100File {
	const base = "https://dadosabertos.mdh.gov.br"
	files := []Disque100File{
		{"2020_1", "first half 2020", base + "/disque100-primeiro-semestre-2020.csv"},
		{"2020_2", "second half 2020", base + "/disque100-segundo-semestre-2020.csv"},
		{"2021_1", "first half 2021", base + "/disque100-primeiro-semestre-2021.csv"},
		{"2021_2", "second half 2021", base + "/disque100-segundo-semestre-2021.csv"},
		{"2022_1", "first half 2022", base + "/disque100-primeiro-semestre-2022.csv"},
		{"2022_2", "second half 2022", base + "/disque100-segundo-semestre-2022.csv"},
		{"2023_1", "first half 2023", base + "/disque100-primeiro-semestre-2023.csv"},
		{"2023_2", "second half 2023", base + "/disque100-segundo-semestre-2023.csv"},
		{"2024_1", "first half 2024", base + "/disque100-primeiro-semestre-2024.csv"},
		{"2024_2", "second half 2024", base + "/disque100-segundo-semestre-2024.csv"},
		{"2025_1", "first quarter 2025", base + "/disque100-primeiro-trimestre-2025.csv"},
	}
	return files
}

// DownloadReport summarizes a batch download.
type DownloadReport struct {
	Downloaded int
	Skipped    int
	Failed     []string
}

// DownloadDisque100 fetches every semester export into destDir, skipping
// files already present and valid unless force is set. Downloads run with
// bounded concurrency; a failed file is recorded and does not stop the
// rest of the batch.
func DownloadDisque100(ctx context.Context, f Fetcher, destDir string, minSize int64, concurrency int, force bool) (*DownloadReport, error) {
	if concurrency <= 0 {
		concurrency = 2
	}

	log := zap.L().With(zap.String("component", "fetch.disque100"))
	report := &DownloadReport{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	results := make(chan string, len(Disque100Files()))
	skips := make(chan struct{}, len(Disque100Files()))
	fails := make(chan string, len(Disque100Files()))

	for _, file := range Disque100Files() {
		file := file
		g.Go(func() error {
			path := filepath.Join(destDir, fmt.Sprintf("disque100_%s.csv", file.Tag))

			if !force {
				if ok, _ := ValidLocalFile(path, minSize); ok {
					log.Debug("skipping existing file", zap.String("tag", file.Tag))
					skips <- struct{}{}
					return nil
				}
			}

			log.Info("downloading", zap.String("tag", file.Tag), zap.String("url", file.URL))
			if _, err := f.DownloadToFile(ctx, file.URL, path); err != nil {
				log.Warn("download failed", zap.String("tag", file.Tag), zap.Error(err))
				fails <- file.Tag
				return nil
			}

			if ok, reason := ValidLocalFile(path, minSize); !ok {
				log.Warn("downloaded file failed validation",
					zap.String("tag", file.Tag),
					zap.String("reason", reason),
				)
				fails <- file.Tag
				return nil
			}

			results <- file.Tag
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)
	close(skips)
	close(fails)

	for range results {
		report.Downloaded++
	}
	for range skips {
		report.Skipped++
	}
	for tag := range fails {
		report.Failed = append(report.Failed, tag)
	}

	log.Info("batch complete",
		zap.Int("downloaded", report.Downloaded),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}
