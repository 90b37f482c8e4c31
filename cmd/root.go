package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dadosbr/segdata/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "segdata",
	Short: "Public-safety data reconciliation pipeline",
	Long:  "Unifies Disque 100 hotline exports and SP/RJ monthly crime series into comparable municipal tables with population-adjusted rates.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
