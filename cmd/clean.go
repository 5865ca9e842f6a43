package cmd

import (
	"fmt"
	"sort"

	cfgpkg "github.com/KaramelBytes/threatcast/internal/config"
	"github.com/KaramelBytes/threatcast/internal/manifest"
	"github.com/KaramelBytes/threatcast/internal/normalize"
	"github.com/KaramelBytes/threatcast/internal/pipeline"
	"github.com/KaramelBytes/threatcast/internal/reader"
	"github.com/KaramelBytes/threatcast/internal/utils"
	"github.com/spf13/cobra"
)

var (
	cleanOutput     string
	cleanDelimiter  string
	cleanSheetName  string
	cleanNoManifest bool
	cleanShowSkips  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file]",
	Short: "Normalize the dataset into the canonical six-column CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := pipelineOptions(cmd, args, cleanDelimiter, cleanSheetName)
		if err != nil {
			return err
		}
		output := cfg.OutputPath
		if cleanOutput != "" {
			output = cleanOutput
		}
		if opt.OutputPath, err = utils.ExpandHome(output); err != nil {
			return err
		}
		opt.WriteManifest = cfg.WriteManifest && !cleanNoManifest

		res, err := pipeline.Run(cmd.Context(), opt)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Wrote %d records to %s (%d of %d rows dropped)\n",
			res.Run.RowsWritten, opt.OutputPath, len(res.Cleaned.Skipped), res.Run.RowsRead)
		if opt.WriteManifest {
			fmt.Fprintf(out, "✓ Run %s manifest: %s\n", res.Run.ID, manifest.PathFor(opt.OutputPath))
		}
		printSkipCounts(cmd, res.Cleaned)
		if res.Run.Rejected > 0 {
			fmt.Fprintf(out, "⚠ %d record(s) with a non-integer year or value left out of the series\n", res.Run.Rejected)
		}
		if cleanShowSkips {
			for _, s := range res.Cleaned.Skipped {
				fmt.Fprintf(out, "  line %d: %s %q\n", s.Line, s.Reason, s.Fields)
			}
		}
		return nil
	},
}

// pipelineOptions resolves input and reader settings from args, flags and config.
func pipelineOptions(cmd *cobra.Command, args []string, delimFlag, sheetFlag string) (pipeline.Options, error) {
	delimName := cfg.Delimiter
	if cmd.Flags().Changed("delimiter") {
		delimName = delimFlag
	}
	delim, err := cfgpkg.ParseDelimiter(delimName)
	if err != nil {
		return pipeline.Options{}, err
	}
	input, err := utils.ExpandHome(inputPath(args))
	if err != nil {
		return pipeline.Options{}, err
	}
	sheet := cfg.SheetName
	if sheetFlag != "" {
		sheet = sheetFlag
	}
	return pipeline.Options{
		InputPath: input,
		Reader:    reader.Options{Delimiter: delim, SheetName: sheet},
		Logger:    logger,
	}, nil
}

func printSkipCounts(cmd *cobra.Command, res *normalize.Result) {
	counts := res.SkipCounts()
	if len(counts) == 0 {
		return
	}
	reasons := make([]normalize.SkipReason, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	for _, r := range reasons {
		fmt.Fprintf(cmd.OutOrStdout(), "⚠ dropped %d row(s): %s\n", counts[r], r)
	}
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "path of the cleaned CSV (default from config)")
	cleanCmd.Flags().StringVar(&cleanDelimiter, "delimiter", "", "input delimiter: ',' | ';' | 'tab'")
	cleanCmd.Flags().StringVar(&cleanSheetName, "sheet-name", "", "XLSX: sheet name to read")
	cleanCmd.Flags().BoolVar(&cleanNoManifest, "no-manifest", false, "do not write the run manifest")
	cleanCmd.Flags().BoolVar(&cleanShowSkips, "show-skipped", false, "list every dropped row")
}
