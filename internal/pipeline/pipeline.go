// Package pipeline wires reading, normalization and aggregation into a single
// pass over one input file.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/threatcast/internal/manifest"
	"github.com/KaramelBytes/threatcast/internal/normalize"
	"github.com/KaramelBytes/threatcast/internal/reader"
	"github.com/KaramelBytes/threatcast/internal/series"
	"github.com/KaramelBytes/threatcast/internal/utils"
)

// Options controls one pipeline run.
type Options struct {
	InputPath string
	Reader    reader.Options
	// OutputPath receives the cleaned CSV. Empty skips writing.
	OutputPath string
	// WriteManifest writes <OutputPath>.manifest.json next to the cleaned CSV.
	WriteManifest bool
	Logger        *slog.Logger
}

// Outcome bundles everything a run produced.
type Outcome struct {
	Run     *manifest.Run
	Cleaned *normalize.Result
	Series  *series.Set
}

// Run reads, normalizes and aggregates the input. Only a failure to read the
// input or write the artifacts is returned as an error; bad rows are recorded
// on the outcome.
func Run(ctx context.Context, opt Options) (*Outcome, error) {
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tbl, err := reader.ReadFile(opt.InputPath, opt.Reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := manifest.NewRun(opt.InputPath)
	cleaned := normalize.Normalize(tbl, logger)
	run.Record(cleaned)

	set := series.Aggregate(cleaned.Records, logger)
	run.SeriesCount = set.Len()
	run.Excluded = set.Excluded
	run.Rejected = set.Rejected

	if opt.OutputPath != "" {
		data, err := normalize.EncodeCSV(cleaned.Records)
		if err != nil {
			return nil, err
		}
		if err := utils.SafeWriteFile(opt.OutputPath, data); err != nil {
			return nil, fmt.Errorf("write cleaned csv: %w", err)
		}
		run.Output = opt.OutputPath
		logger.Info("wrote cleaned csv",
			slog.String("path", opt.OutputPath),
			slog.Int("record_count", len(cleaned.Records)))
		if opt.WriteManifest {
			if err := run.Save(manifest.PathFor(opt.OutputPath)); err != nil {
				return nil, fmt.Errorf("write manifest: %w", err)
			}
		}
	}
	return &Outcome{Run: run, Cleaned: cleaned, Series: set}, nil
}
