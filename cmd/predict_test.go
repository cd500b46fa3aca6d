package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/epimap/trend"
)

var testYears = trend.Years{Past: 2015, Current: 2024, Future: 2034}

func TestDefaultYearsUsesClock(t *testing.T) {
	orig := clock
	t.Cleanup(func() { clock = orig })
	clock = clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	y := defaultYears(2015, 5)
	assert.Equal(t, trend.Years{Past: 2015, Current: 2026, Future: 2031}, y)
}

func TestWritePredictions(t *testing.T) {
	samples := []trend.Sample{
		{Region: "서울", Metric: "결핵 퍼센트", Years: testYears, Past: 10, Current: 20, Predicted: 31.111, AnnualGrowth: 1.111},
		{Region: "부산", Metric: "결핵 퍼센트", Years: testYears, Past: 12, Current: 10, Predicted: 7.778, AnnualGrowth: -0.222},
	}
	misses := []trend.Miss{{Region: "부산", Metric: "간염 퍼센트", Err: trend.ErrMetricNotFound}}

	var buf bytes.Buffer
	writePredictions(&buf, testYears, samples, misses)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Trend 2015 → 2024 → 2034 (linear)\n"))
	assert.Contains(t, out, "31.111%")
	assert.Contains(t, out, "+1.111/yr")
	assert.Contains(t, out, "-0.222/yr")
	assert.Contains(t, out, "2034*")
	assert.Contains(t, out, "unavailable (1):\n  부산 / 간염 퍼센트: metric not found\n")
	assert.Less(t, strings.Index(out, "\n서울\n"), strings.Index(out, "\n부산\n"))
}

func TestWritePredictionsNone(t *testing.T) {
	var buf bytes.Buffer
	writePredictions(&buf, testYears, nil, []trend.Miss{{Region: "서울", Metric: "m", Err: trend.ErrNoSnapshot}})
	assert.Contains(t, buf.String(), "(no data)")
	assert.Contains(t, buf.String(), "서울 / m: snapshot not loaded")
}

func TestRenderTrendPDF(t *testing.T) {
	samples := []trend.Sample{
		{Region: "Seoul", Metric: "tb", Years: testYears, Past: 10, Current: 20, Predicted: 31.111, AnnualGrowth: 1.111},
		{Region: "Seoul", Metric: "hep", Years: testYears, Past: 4, Current: 4, Predicted: 4},
		{Region: "Busan", Metric: "tb", Years: testYears, Past: 12, Current: 10, Predicted: 7.778, AnnualGrowth: -0.222},
	}
	path := filepath.Join(t.TempDir(), "trend.pdf")

	require.NoError(t, renderTrendPDF(path, []string{"Seoul", "Busan"}, samples))
	// Bar and line chart per region.
	assert.Equal(t, 4, pdfPageCount(t, path))
}

func TestRenderTrendPDFSkipsRegionsWithoutSamples(t *testing.T) {
	samples := []trend.Sample{
		{Region: "Seoul", Metric: "tb", Years: testYears, Past: 10, Current: 20, Predicted: 31.111},
	}
	path := filepath.Join(t.TempDir(), "trend.pdf")

	require.NoError(t, renderTrendPDF(path, []string{"Seoul", "Daegu"}, samples))
	assert.Equal(t, 2, pdfPageCount(t, path))
}
