package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dadosbr/segdata/internal/source"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		paths, err := discoverPaths()
		if err != nil {
			return err
		}
		log, err := openRunLog(paths)
		if err != nil {
			return err
		}
		defer log.Close()

		entries, err := log.Recent(ctx, statusLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tSTATUS\tSTARTED\tROWS\tERROR")
		for _, e := range entries {
			errMsg := e.Error
			if len(errMsg) > 60 {
				errMsg = errMsg[:57] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				e.Source, e.Status, e.StartedAt.Format("2006-01-02 15:04:05"), e.RowsOut, errMsg)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\nregistered sources: %v\n", source.NewRegistry().AllNames())
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "number of runs to show")
	rootCmd.AddCommand(statusCmd)
}
