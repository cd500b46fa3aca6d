package dataset

import (
	"fmt"
	"math"
)

// RadiusScale converts a metric value into a marker radius in meters.
const RadiusScale = 20000

// Marker color channels that don't vary with the value.
const (
	markerBlue  = 60
	markerAlpha = 160
)

// Ratio places v between min and max, clamped to [0, 1]. A degenerate range
// (max == min) maps every value to the midpoint.
func Ratio(v, min, max float64) float64 {
	if max <= min {
		return 0.5
	}
	r := (v - min) / (max - min)
	return math.Max(0, math.Min(1, r))
}

// ColorFor maps a ratio onto the green → red marker ramp.
func ColorFor(ratio float64) RGBA {
	return RGBA{
		uint8(math.Round(255 * ratio)),
		uint8(math.Round(255 * (1 - ratio))),
		markerBlue,
		markerAlpha,
	}
}

// Radius is the marker size for a value.
func Radius(v float64) float64 {
	return v * RadiusScale
}

// Bounds returns the minimum and maximum of metric across all records.
func Bounds(d *Dataset, metric string) (min, max float64, err error) {
	if !d.HasMetric(metric) {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	if len(d.Records) == 0 {
		return 0, 0, ErrNoData
	}
	min, max = math.Inf(1), math.Inf(-1)
	for _, r := range d.Records {
		v := r.Values[metric]
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return min, max, nil
}

// Style derives color and radius for every record under the selected
// metric. Records keep their source order.
func Style(d *Dataset, metric string) ([]Styled, error) {
	min, max, err := Bounds(d, metric)
	if err != nil {
		return nil, err
	}
	out := make([]Styled, len(d.Records))
	for i, r := range d.Records {
		v := r.Values[metric]
		ratio := Ratio(v, min, max)
		out[i] = Styled{
			Region: r,
			Metric: metric,
			Value:  v,
			Ratio:  ratio,
			Color:  ColorFor(ratio),
			Radius: Radius(v),
		}
	}
	return out, nil
}

// Tooltip is the hover text for a styled marker.
func (s Styled) Tooltip() string {
	return fmt.Sprintf("%s\n%s: %s", s.Name, s.Metric, FormatPercent(s.Value))
}
