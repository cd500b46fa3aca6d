package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPercent is wrapped by every percentage parse failure.
	ErrMalformedPercent = errors.New("malformed percentage")
	// ErrNoData means every row was excluded.
	ErrNoData = errors.New("no data")
	// ErrNoMetrics means no column carries the percentage marker.
	ErrNoMetrics = errors.New("no percentage columns")
	// ErrUnknownMetric is returned for a metric the dataset doesn't carry.
	ErrUnknownMetric = errors.New("unknown metric")
	// ErrDuplicateRegion means two rows resolved to the same region name.
	ErrDuplicateRegion = errors.New("duplicate region")
	// ErrRegionColumn means the configured region column is absent.
	ErrRegionColumn = errors.New("region column not found")
)

// ValueError locates a cell that failed to parse as a percentage.
type ValueError struct {
	Line   int
	Column string
	Raw    string
	Err    error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("line %d, column %q: %v", e.Line, e.Column, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }
