package dataset

import (
	"fmt"
	"sort"
)

// Rank returns (region, value) rows for metric, highest value first. Ties
// are broken by region name so the order is stable across runs.
func Rank(d *Dataset, metric string) ([]Row, error) {
	if !d.HasMetric(metric) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	if len(d.Records) == 0 {
		return nil, ErrNoData
	}
	rows := make([]Row, len(d.Records))
	for i, r := range d.Records {
		rows[i] = Row{Region: r.Name, Value: r.Values[metric]}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Region < rows[j].Region
	})
	return rows, nil
}
