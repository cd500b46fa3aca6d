package dataset

import (
	"fmt"
	"strings"

	"github.com/zalepa/epimap/geo"
)

// Defaults for Options fields left empty.
const (
	DefaultMarker = "퍼센트"
)

// DefaultSentinels name the nationwide-total row. They are always excluded;
// Options.Sentinels only adds to them.
var DefaultSentinels = []string{"전국", "nationwide"}

// Options controls Prepare.
type Options struct {
	// RegionColumn names the column holding region names. Empty selects the
	// first column.
	RegionColumn string
	// Marker is the substring identifying percentage columns.
	Marker string
	// Sentinels are extra aggregate row names to exclude alongside
	// DefaultSentinels. Compared case-insensitively.
	Sentinels []string
	// NormalizeNames accepts official long forms ("서울특별시", "충청북도")
	// by mapping them onto table keys. Off, a name must be a key exactly.
	NormalizeNames bool
	// Regions resolves names to coordinates. The zero value uses geo.Default.
	Regions geo.Table
}

func (o Options) withDefaults() Options {
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	o.Sentinels = MergeSentinels(o.Sentinels)
	if o.Regions.Len() == 0 {
		o.Regions = geo.Default()
	}
	return o
}

// RegionName is the table key a source name is looked up under: the trimmed
// name, or its canonical form when NormalizeNames is set.
func (o Options) RegionName(raw string) string {
	if o.NormalizeNames {
		regions := o.Regions
		if regions.Len() == 0 {
			regions = geo.Default()
		}
		return regions.Canonical(raw)
	}
	return strings.TrimSpace(raw)
}

// MergeSentinels returns DefaultSentinels followed by any extra names not
// already present.
func MergeSentinels(extra []string) []string {
	out := append([]string(nil), DefaultSentinels...)
	for _, s := range extra {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		dup := false
		for _, have := range out {
			if strings.EqualFold(have, s) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}

func (o Options) isSentinel(name string) bool {
	name = strings.TrimSpace(name)
	for _, s := range o.Sentinels {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

// Prepare cleans a raw table into a Dataset:
//
//   - column labels are trimmed
//   - sentinel rows are dropped, then rows without a coordinate
//   - every column whose label contains the marker is parsed as a percentage
//
// A malformed percentage fails the whole load with a *ValueError. A table
// with no surviving rows returns ErrNoData.
func Prepare(t Table, opts Options) (*Dataset, error) {
	opts = opts.withDefaults()

	header := make([]string, len(t.Header))
	for i, h := range t.Header {
		header[i] = strings.TrimSpace(h)
	}
	if len(header) == 0 {
		return nil, ErrNoData
	}

	regionIdx := 0
	if opts.RegionColumn != "" {
		regionIdx = indexOf(header, strings.TrimSpace(opts.RegionColumn))
		if regionIdx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrRegionColumn, opts.RegionColumn)
		}
	}

	var metricIdx []int
	ds := &Dataset{}
	for i, h := range header {
		if i == regionIdx || !strings.Contains(h, opts.Marker) {
			continue
		}
		metricIdx = append(metricIdx, i)
		ds.Metrics = append(ds.Metrics, h)
	}
	if len(metricIdx) == 0 {
		return nil, fmt.Errorf("%w: marker %q", ErrNoMetrics, opts.Marker)
	}

	seen := make(map[string]int)
	for i, row := range t.Rows {
		line := i + 2
		raw := cell(row, regionIdx)

		if opts.isSentinel(raw) {
			ds.Dropped = append(ds.Dropped, DroppedRow{Line: line, Name: raw, Reason: ReasonSentinel})
			continue
		}
		name := opts.RegionName(raw)
		coord, ok := opts.Regions.Lookup(name)
		if !ok {
			ds.Dropped = append(ds.Dropped, DroppedRow{Line: line, Name: raw, Reason: ReasonUnmapped})
			continue
		}

		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q on lines %d and %d", ErrDuplicateRegion, name, prev, line)
		}
		seen[name] = line

		values := make(map[string]float64, len(metricIdx))
		for j, col := range metricIdx {
			v, err := ParsePercent(cell(row, col))
			if err != nil {
				return nil, &ValueError{Line: line, Column: ds.Metrics[j], Raw: cell(row, col), Err: err}
			}
			values[ds.Metrics[j]] = v
		}

		ds.Records = append(ds.Records, Region{
			Name:       name,
			Coordinate: coord,
			Geohash:    geo.Geohash(coord),
			Values:     values,
		})
	}

	if len(ds.Records) == 0 {
		return nil, ErrNoData
	}
	return ds, nil
}

// Load reads and prepares a file in one step.
func Load(path string, opts Options) (*Dataset, error) {
	t, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := Prepare(t, opts)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", path, err)
	}
	return ds, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
