// Package trend extrapolates a region's metric linearly from a past snapshot
// through the current one to a future year.
package trend

import (
	"errors"
	"fmt"
	"math"

	"github.com/jonboulle/clockwork"

	"github.com/zalepa/epimap/dataset"
)

var (
	// ErrSameYear rejects a past year equal to the current year; the growth
	// rate would be undefined.
	ErrSameYear = errors.New("past and current year are equal")
	// ErrRegionNotFound means a snapshot has no row for the region.
	ErrRegionNotFound = errors.New("region not found")
	// ErrMetricNotFound means a snapshot has no column for the metric.
	ErrMetricNotFound = errors.New("metric not found")
	// ErrNoSnapshot means a snapshot was not loaded.
	ErrNoSnapshot = errors.New("snapshot not loaded")
)

// DefaultPastYear is the year of the historical snapshot shipped with the
// dashboard.
const DefaultPastYear = 2015

// DefaultHorizon is how many years past the current one are projected.
const DefaultHorizon = 10

// Years are the three reference years of a prediction.
type Years struct {
	Past    int `json:"past"`
	Current int `json:"current"`
	Future  int `json:"future"`
}

// DefaultYears uses the clock's year as the current year.
func DefaultYears(clock clockwork.Clock) Years {
	cur := clock.Now().Year()
	return Years{Past: DefaultPastYear, Current: cur, Future: cur + DefaultHorizon}
}

// Validate rejects year triples the extrapolation can't handle.
func (y Years) Validate() error {
	if y.Past == y.Current {
		return fmt.Errorf("%w: %d", ErrSameYear, y.Past)
	}
	return nil
}

// Sample is one (region, metric) prediction. Values are rounded to three
// decimals.
type Sample struct {
	Region       string  `json:"region"`
	Metric       string  `json:"metric"`
	Years        Years   `json:"years"`
	Past         float64 `json:"past"`
	Current      float64 `json:"current"`
	Predicted    float64 `json:"predicted"`
	AnnualGrowth float64 `json:"annualGrowth"`
}

// Miss records a pair that could not be predicted.
type Miss struct {
	Region string `json:"region"`
	Metric string `json:"metric"`
	Err    error  `json:"-"`
}

func (m Miss) Error() string {
	return fmt.Sprintf("%s / %s: %v", m.Region, m.Metric, m.Err)
}

// Predictor pairs a past snapshot with the current one.
type Predictor struct {
	Past    *dataset.Dataset
	Current *dataset.Dataset
}

// Predict extrapolates one (region, metric) pair.
func (p Predictor) Predict(region, metric string, y Years) (Sample, error) {
	if err := y.Validate(); err != nil {
		return Sample{}, err
	}
	past, err := lookup(p.Past, "past", region, metric)
	if err != nil {
		return Sample{}, err
	}
	cur, err := lookup(p.Current, "current", region, metric)
	if err != nil {
		return Sample{}, err
	}

	growth, predicted := Extrapolate(past, cur, y)
	return Sample{
		Region:       region,
		Metric:       metric,
		Years:        y,
		Past:         Round3(past),
		Current:      Round3(cur),
		Predicted:    Round3(predicted),
		AnnualGrowth: Round3(growth),
	}, nil
}

// PredictAll predicts every (region, metric) pair. A failing pair is
// reported as a Miss and the rest still run.
func (p Predictor) PredictAll(regions, metrics []string, y Years) ([]Sample, []Miss) {
	var samples []Sample
	var misses []Miss
	for _, r := range regions {
		for _, m := range metrics {
			s, err := p.Predict(r, m, y)
			if err != nil {
				misses = append(misses, Miss{Region: r, Metric: m, Err: err})
				continue
			}
			samples = append(samples, s)
		}
	}
	return samples, misses
}

// Extrapolate returns the constant annual growth from past to current and
// the value projected to y.Future. y must be valid.
func Extrapolate(past, current float64, y Years) (growth, predicted float64) {
	growth = (current - past) / float64(y.Current-y.Past)
	predicted = current + growth*float64(y.Future-y.Current)
	return growth, predicted
}

// Round3 rounds to three decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func lookup(ds *dataset.Dataset, which, region, metric string) (float64, error) {
	if ds == nil {
		return 0, fmt.Errorf("%s: %w", which, ErrNoSnapshot)
	}
	r, ok := ds.Find(region)
	if !ok {
		return 0, fmt.Errorf("%s snapshot: %w: %q", which, ErrRegionNotFound, region)
	}
	v, ok := r.Values[metric]
	if !ok {
		return 0, fmt.Errorf("%s snapshot: %w: %q", which, ErrMetricNotFound, metric)
	}
	return v, nil
}
