package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dadosbr/segdata/internal/frame"
	"github.com/dadosbr/segdata/internal/quality"
	"github.com/dadosbr/segdata/internal/source"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Diagnose the staged tables",
	Long:  "Reports per-column fill rates for the unified complaint table and coverage gaps and implausible zero months in the monthly crime series.",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := discoverPaths()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

		violencia, err := frame.ReadFile(filepath.Join(paths.Staging, source.ViolenciaFile), frame.ReadOptions{})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "complaint table: %d rows\n", violencia.NumRows())
		fmt.Fprintln(w, "COLUMN\tFILLED\tRATE")
		for _, ff := range quality.FillRates(violencia) {
			fmt.Fprintf(w, "%s\t%d/%d\t%.1f%%\n", ff.Column, ff.Filled, ff.Total, ff.Rate()*100)
		}

		serie, err := frame.ReadFile(filepath.Join(paths.Staging, source.SerieMensalFile), frame.ReadOptions{})
		if err != nil {
			return err
		}
		report, err := quality.DiagnoseSeries(serie)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\nmonthly series: %d dated rows\n", report.Rows)
		fmt.Fprintln(w, "UF\tYEAR\tMONTHS")
		for _, c := range report.Coverage {
			fmt.Fprintf(w, "%s\t%s\t%d\n", c.UF, c.Year, c.Months)
		}
		if len(report.ZeroMonths) > 0 {
			fmt.Fprintln(w, "\nstatewide zero-homicide months (likely unpublished data):")
			for _, z := range report.ZeroMonths {
				fmt.Fprintf(w, "%s\t%s\n", z.UF, z.Data)
			}
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(qualityCmd)
}
