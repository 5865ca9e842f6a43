package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/threatcast/internal/series"
)

// Result answers one forecast query.
type Result struct {
	Key         series.Key
	Points      []series.Point // sorted by year
	LastYear    int
	LastValue   int64
	Model       *Model
	MAE         float64
	HasMAE      bool
	Predictions []Prediction
	// Err is set by QueryAll when this key failed a precondition.
	Err error
}

// Service answers forecast queries against an aggregated series set.
type Service struct {
	set    *series.Set
	logger *slog.Logger
}

// NewService returns a Service over set.
func NewService(set *series.Set, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{set: set, logger: logger}
}

// Query fits the (country, category) series and forecasts horizon years past
// its last observation. Unknown countries and unrecognized category labels
// return ErrNoData. An invalid horizon is reported before either.
func (s *Service) Query(country, category string, horizon int) (*Result, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizon)
	}
	cat, ok := series.ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrNoData, category)
	}
	return s.query(series.Key{Country: country, Category: cat}, horizon)
}

func (s *Service) query(key series.Key, horizon int) (*Result, error) {
	pts, ok := s.set.Series(key.Country, key.Category)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoData, key)
	}
	model, err := Fit(pts)
	if err != nil {
		var he *HistoryError
		if errors.As(err, &he) {
			he.Key = key.String()
		}
		return nil, err
	}
	sorted := series.Sorted(pts)
	last, _ := series.Last(sorted)
	preds, err := model.Forecast(last.Year, horizon)
	if err != nil {
		return nil, err
	}
	mae, hasMAE := model.MeanAbsoluteError()
	s.logger.Debug("fitted trend",
		slog.String("key", key.String()),
		slog.Int("points", len(pts)),
		slog.Float64("slope", model.Slope),
		slog.Float64("mae", mae))
	return &Result{
		Key:         key,
		Points:      sorted,
		LastYear:    last.Year,
		LastValue:   last.Value,
		Model:       model,
		MAE:         mae,
		HasMAE:      hasMAE,
		Predictions: preds,
	}, nil
}

// QueryAll forecasts every country that has a series for category, using up
// to workers concurrent fits. Results come back in country order. Keys that
// fail a precondition carry the error in Result.Err instead of failing the batch.
func (s *Service) QueryAll(ctx context.Context, category string, horizon, workers int) ([]*Result, error) {
	cat, ok := series.ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrNoData, category)
	}
	if horizon < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizon)
	}
	var keys []series.Key
	for _, k := range s.set.Keys() {
		if k.Category == cat {
			keys = append(keys, k)
		}
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]*Result, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, k := range keys {
		i, k := i, k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.query(k, horizon)
			if err != nil {
				r = &Result{Key: k, Err: err}
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
