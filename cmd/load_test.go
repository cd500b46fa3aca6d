package cmd

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/epimap/dataset"
)

func TestLoaderRecordsMetrics(t *testing.T) {
	l, m := testLoader(t)
	path := writeTemp(t, "data.csv", currentCSV)

	ds, err := l.load(path, snapshotCurrent)
	require.NoError(t, err)
	assert.Len(t, ds.Records, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetLoads.WithLabelValues(snapshotCurrent, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsDropped.WithLabelValues(dataset.ReasonSentinel)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsDropped.WithLabelValues(dataset.ReasonUnmapped)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsRetained))

	again, err := l.load(path, snapshotCurrent)
	require.NoError(t, err)
	assert.Same(t, ds, again)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetCache.WithLabelValues("hit")))
	// Drops are only counted when a file is prepared.
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsDropped.WithLabelValues(dataset.ReasonSentinel)))
}

func TestLoaderCountsErrors(t *testing.T) {
	l, m := testLoader(t)
	path := writeTemp(t, "bad.csv", ",결핵 퍼센트\n서울,abc\n")

	_, err := l.load(path, snapshotPast)
	var ve *dataset.ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 2, ve.Line)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetLoads.WithLabelValues(snapshotPast, "error")))
}

func TestLoaderWithoutMetrics(t *testing.T) {
	l := newLoader(dataset.NewCache(dataset.Options{}, 1), discardLogger(), nil)
	_, err := l.load(writeTemp(t, "data.csv", currentCSV), snapshotCurrent)
	assert.NoError(t, err)
}

func TestSelectMetric(t *testing.T) {
	ds := loadCurrent(t)

	got, err := selectMetric(ds, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "결핵 퍼센트", got, "first discovered column")

	got, err = selectMetric(ds, "", []string{"홍역 퍼센트", "간염 퍼센트"})
	require.NoError(t, err)
	assert.Equal(t, "간염 퍼센트", got, "first known metric present")

	got, err = selectMetric(ds, "간염 퍼센트", []string{"결핵 퍼센트"})
	require.NoError(t, err)
	assert.Equal(t, "간염 퍼센트", got, "explicit request wins")

	_, err = selectMetric(ds, "홍역 퍼센트", nil)
	assert.ErrorIs(t, err, dataset.ErrUnknownMetric)
	assert.Contains(t, err.Error(), `"결핵 퍼센트"`)
}
