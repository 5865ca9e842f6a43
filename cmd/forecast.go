package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/threatcast/internal/forecast"
	"github.com/KaramelBytes/threatcast/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	fcCountry     string
	fcCategory    string
	fcHorizon     int
	fcAll         bool
	fcWorkers     int
	fcInteractive bool
	fcDelimiter   string
	fcSheetName   string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast [file]",
	Short: "Fit a linear trend to a country/category series and forecast future counts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		horizon := cfg.Horizon
		if cmd.Flags().Changed("horizon") {
			horizon = fcHorizon
		}
		workers := cfg.Workers
		if cmd.Flags().Changed("workers") {
			workers = fcWorkers
		}
		if !fcInteractive && !fcAll && fcCountry == "" {
			return fmt.Errorf("--country is required (or use --all / --interactive)")
		}

		opt, err := pipelineOptions(cmd, args, fcDelimiter, fcSheetName)
		if err != nil {
			return err
		}
		res, err := pipeline.Run(cmd.Context(), opt)
		if err != nil {
			return err
		}
		svc := forecast.NewService(res.Series, logger)
		out := cmd.OutOrStdout()

		switch {
		case fcInteractive:
			return interactive(svc, cmd.InOrStdin(), out, horizon)
		case fcAll:
			results, err := svc.QueryAll(cmd.Context(), fcCategory, horizon, workers)
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(out, "⚠ %s: %v\n", r.Key, r.Err)
					continue
				}
				printForecast(out, r)
			}
			return nil
		default:
			r, err := svc.Query(fcCountry, fcCategory, horizon)
			if err != nil {
				return err
			}
			printForecast(out, r)
			return nil
		}
	},
}

func printForecast(w io.Writer, r *forecast.Result) {
	fmt.Fprintf(w, "%s: %d observations %d-%d, last value %d\n",
		r.Key, len(r.Points), r.Points[0].Year, r.LastYear, r.LastValue)
	if r.HasMAE {
		fmt.Fprintf(w, "  trend %+.3f/year, training MAE %.3f\n", r.Model.Slope, r.MAE)
	} else {
		fmt.Fprintf(w, "  trend %+.3f/year, training MAE n/a\n", r.Model.Slope)
	}
	for _, p := range r.Predictions {
		fmt.Fprintf(w, "  %d  %.2f\n", p.Year, p.Value)
	}
}

// interactive answers queries read from in until EOF or "quit". Missing keys
// and short series are reported and the loop continues.
func interactive(svc *forecast.Service, in io.Reader, out io.Writer, defaultHorizon int) error {
	sc := bufio.NewScanner(in)
	ask := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			return "", false
		}
		v := strings.TrimSpace(sc.Text())
		return v, !strings.EqualFold(v, "quit")
	}
	for {
		country, ok := ask("Country: ")
		if !ok {
			break
		}
		category, ok := ask("Category (Total|Vertebrates|Invertebrates|Plants): ")
		if !ok {
			break
		}
		h, ok := ask(fmt.Sprintf("Horizon [%d]: ", defaultHorizon))
		if !ok {
			break
		}
		horizon := defaultHorizon
		if h != "" {
			n, err := strconv.Atoi(h)
			if err != nil {
				fmt.Fprintf(out, "⚠ invalid horizon %q\n", h)
				continue
			}
			horizon = n
		}
		r, err := svc.Query(country, category, horizon)
		switch {
		case errors.Is(err, forecast.ErrNoData):
			fmt.Fprintf(out, "no data for %s / %s\n", country, category)
		case err != nil:
			fmt.Fprintf(out, "⚠ %v\n", err)
		default:
			printForecast(out, r)
		}
	}
	return sc.Err()
}

func init() {
	rootCmd.AddCommand(forecastCmd)
	forecastCmd.Flags().StringVarP(&fcCountry, "country", "c", "", "country name exactly as it appears in the dataset")
	forecastCmd.Flags().StringVarP(&fcCategory, "category", "k", "Total", "species category: Total|Vertebrates|Invertebrates|Plants")
	forecastCmd.Flags().IntVarP(&fcHorizon, "horizon", "n", 5, "number of future years to forecast (default from config)")
	forecastCmd.Flags().BoolVar(&fcAll, "all", false, "forecast every country that has the category")
	forecastCmd.Flags().IntVar(&fcWorkers, "workers", 4, "concurrent fits for --all (default from config)")
	forecastCmd.Flags().BoolVarP(&fcInteractive, "interactive", "i", false, "prompt for queries on stdin")
	forecastCmd.Flags().StringVar(&fcDelimiter, "delimiter", "", "input delimiter: ',' | ';' | 'tab'")
	forecastCmd.Flags().StringVar(&fcSheetName, "sheet-name", "", "XLSX: sheet name to read")
}
