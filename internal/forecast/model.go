package forecast

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/threatcast/internal/series"
)

// Model is a fitted linear trend value ≈ Slope·year + Intercept.
type Model struct {
	Slope     float64
	Intercept float64

	mae    float64
	hasMAE bool
}

// Prediction is one extrapolated point.
type Prediction struct {
	Year  int     `json:"year"`
	Value float64 `json:"predicted_value"`
}

// Fit runs ordinary least squares over the points. At least two distinct
// years are required. Point order does not matter.
func Fit(points []series.Point) (*Model, error) {
	years := map[int]struct{}{}
	for _, p := range points {
		years[p.Year] = struct{}{}
	}
	if len(points) < 2 || len(years) < 2 {
		return nil, &HistoryError{Points: len(points), Years: len(years)}
	}

	n := float64(len(points))
	var sumX, sumY float64
	for _, p := range points {
		sumX += float64(p.Year)
		sumY += float64(p.Value)
	}
	meanX, meanY := sumX/n, sumY/n
	// centered sums keep precision with year-sized predictors
	var sxx, sxy float64
	for _, p := range points {
		dx := float64(p.Year) - meanX
		sxx += dx * dx
		sxy += dx * (float64(p.Value) - meanY)
	}
	m := &Model{Slope: sxy / sxx}
	m.Intercept = meanY - m.Slope*meanX
	m.mae, m.hasMAE = meanAbsoluteError(m, points)
	return m, nil
}

// Predict returns the trend value for year.
func (m *Model) Predict(year int) float64 {
	return m.Slope*float64(year) + m.Intercept
}

// MeanAbsoluteError returns the training MAE. ok is false when no metric is available.
func (m *Model) MeanAbsoluteError() (mae float64, ok bool) {
	return m.mae, m.hasMAE
}

// Forecast extrapolates n contiguous years after lastObservedYear.
func (m *Model) Forecast(lastObservedYear, n int) ([]Prediction, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, n)
	}
	out := make([]Prediction, n)
	for i := range out {
		y := lastObservedYear + i + 1
		out[i] = Prediction{Year: y, Value: m.Predict(y)}
	}
	return out, nil
}

func meanAbsoluteError(m *Model, points []series.Point) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	var sum float64
	for _, p := range points {
		sum += math.Abs(m.Predict(p.Year) - float64(p.Value))
	}
	return sum / float64(len(points)), true
}
