package cmd

import (
	"fmt"

	"github.com/KaramelBytes/threatcast/internal/pipeline"
	"github.com/KaramelBytes/threatcast/internal/series"
	"github.com/spf13/cobra"
)

var (
	seriesDelimiter string
	seriesSheetName string
	seriesCountry   string
)

var seriesCmd = &cobra.Command{
	Use:   "series [file]",
	Short: "List the country/category series found in the dataset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := pipelineOptions(cmd, args, seriesDelimiter, seriesSheetName)
		if err != nil {
			return err
		}
		res, err := pipeline.Run(cmd.Context(), opt)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		shown := 0
		for _, k := range res.Series.Keys() {
			if seriesCountry != "" && k.Country != seriesCountry {
				continue
			}
			pts, _ := res.Series.Series(k.Country, k.Category)
			sorted := series.Sorted(pts)
			fmt.Fprintf(out, "- %s: %d points (%d-%d)\n", k, len(pts), sorted[0].Year, sorted[len(sorted)-1].Year)
			shown++
		}
		if shown == 0 {
			fmt.Fprintln(out, "(no series)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seriesCmd)
	seriesCmd.Flags().StringVar(&seriesDelimiter, "delimiter", "", "input delimiter: ',' | ';' | 'tab'")
	seriesCmd.Flags().StringVar(&seriesSheetName, "sheet-name", "", "XLSX: sheet name to read")
	seriesCmd.Flags().StringVar(&seriesCountry, "country", "", "only list series for this country")
}
