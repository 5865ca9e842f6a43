package forecast

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData indicates the requested country/category has no series.
	ErrNoData = errors.New("no data for this key")
	// ErrInsufficientHistory indicates the series exists but cannot support a fit.
	ErrInsufficientHistory = errors.New("insufficient history to fit a trend")
	// ErrInvalidHorizon indicates a non-positive forecast horizon.
	ErrInvalidHorizon = errors.New("horizon must be at least 1")
)

// HistoryError reports a series too short (or too flat in time) to fit.
type HistoryError struct {
	Key    string
	Points int
	Years  int
}

func (e *HistoryError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%v: %d points across %d distinct years, need at least 2", ErrInsufficientHistory, e.Points, e.Years)
	}
	return fmt.Sprintf("%s: %v: %d points across %d distinct years, need at least 2", e.Key, ErrInsufficientHistory, e.Points, e.Years)
}

func (e *HistoryError) Unwrap() error { return ErrInsufficientHistory }
