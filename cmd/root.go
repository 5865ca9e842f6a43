package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/threatcast/internal/config"
	"github.com/KaramelBytes/threatcast/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags (override config when set)
	cfgFile   string
	logLevel  string
	logFormat string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "threatcast",
	Short: "threatcast: clean threatened-species counts and forecast per-country trends",
	Long: `threatcast normalizes the threatened species dataset into a fixed six-column CSV,
groups it into per-country, per-category time series and fits a linear trend to
forecast future counts.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.threatcast/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{
			InputPath:     "ThreatenedSpecies.csv",
			OutputPath:    "ThreatenedSpecies_Cleaned.csv",
			Horizon:       5,
			Workers:       4,
			WriteManifest: true,
		}
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	logger = logging.Setup(cfg.LogLevel, cfg.LogFormat, rootCmd.ErrOrStderr())
}

// inputPath picks the positional argument, falling back to config.
func inputPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.InputPath
}
