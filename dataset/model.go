// Package dataset turns a raw regions × metrics table into geolocated region
// records and derives the per-metric marker styling shown on the map.
package dataset

import (
	"image/color"

	"github.com/zalepa/epimap/geo"
)

// Region is one geolocated row of the source table.
type Region struct {
	Name       string             `json:"name"`
	Coordinate geo.Coordinate     `json:"coordinate"`
	Geohash    string             `json:"geohash"`
	Values     map[string]float64 `json:"values"`
}

// DroppedRow records a source row excluded during preparation.
type DroppedRow struct {
	Line   int    `json:"line"` // 1-based line in the source file, header is line 1
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Drop reasons.
const (
	ReasonSentinel = "sentinel"
	ReasonUnmapped = "unmapped"
)

// Dataset is the cleaned result of Prepare. It is read-only once built and
// may be shared between callers.
type Dataset struct {
	Records []Region     `json:"records"`
	Metrics []string     `json:"metrics"`
	Dropped []DroppedRow `json:"dropped,omitempty"`
}

// Find returns the record for a region name, matched exactly.
func (d *Dataset) Find(name string) (Region, bool) {
	for _, r := range d.Records {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// HasMetric reports whether metric is one of the dataset's columns.
func (d *Dataset) HasMetric(metric string) bool {
	for _, m := range d.Metrics {
		if m == metric {
			return true
		}
	}
	return false
}

// Value looks up one region's value for one metric.
func (d *Dataset) Value(region, metric string) (float64, bool) {
	r, ok := d.Find(region)
	if !ok {
		return 0, false
	}
	v, ok := r.Values[metric]
	return v, ok
}

// RGBA is a non-premultiplied color in [r, g, b, a] order.
type RGBA [4]uint8

// NRGBA converts c for use with image/color consumers.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// Styled is a region record with its marker attributes for one metric.
type Styled struct {
	Region
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Ratio  float64 `json:"ratio"`
	Color  RGBA    `json:"color"`
	Radius float64 `json:"radius"`
}

// Row is one line of the ranked data table.
type Row struct {
	Region string  `json:"region"`
	Value  float64 `json:"value"`
}
