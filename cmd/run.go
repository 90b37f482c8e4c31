package main

import (
	"github.com/spf13/cobra"

	"github.com/dadosbr/segdata/internal/source"
)

var (
	runStage   string
	runSources []string
	runForce   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline sources",
	Long:  "Runs the registered sources in stage order (map, clean, enrich), recording each run in the run log. Completed sources are skipped unless --force is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		paths, err := discoverPaths()
		if err != nil {
			return err
		}
		env, err := buildEnv(paths)
		if err != nil {
			return err
		}
		log, err := openRunLog(paths)
		if err != nil {
			return err
		}
		defer log.Close()

		opts := source.RunOpts{Sources: runSources, Force: runForce}
		if runStage != "" {
			stage, err := source.ParseStage(runStage)
			if err != nil {
				return err
			}
			opts.Stage = &stage
		}

		eng := source.NewEngine(source.NewRegistry(), log, env)
		return eng.Run(ctx, opts)
	},
}

func init() {
	runCmd.Flags().StringVar(&runStage, "stage", "", "restrict to one stage: map, clean or enrich")
	runCmd.Flags().StringSliceVar(&runSources, "source", nil, "restrict to specific sources (repeatable)")
	runCmd.Flags().BoolVar(&runForce, "force", false, "rerun sources that already completed")
	rootCmd.AddCommand(runCmd)
}
