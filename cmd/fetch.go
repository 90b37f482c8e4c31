package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dadosbr/segdata/internal/fetcher"
)

var fetchForce bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the Disque 100 exports",
	Long:  "Downloads every published Disque 100 semester export from the MDH open-data portal into dados_brutos/disque100, skipping files already present and valid.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		paths, err := discoverPaths()
		if err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
			RatePerSec: cfg.Fetch.RatePerSec,
		})

		destDir := filepath.Join(paths.Raw, "disque100")
		report, err := fetcher.DownloadDisque100(ctx, f, destDir,
			cfg.Fetch.MinFileSize, cfg.Fetch.Concurrency, fetchForce)
		if err != nil {
			return err
		}

		fmt.Printf("downloaded %d, skipped %d, failed %d\n",
			report.Downloaded, report.Skipped, len(report.Failed))
		for _, tag := range report.Failed {
			fmt.Printf("  failed: %s\n", tag)
		}
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d file(s) failed to download", len(report.Failed))
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "redownload files that are already present")
	rootCmd.AddCommand(fetchCmd)
}
