package cmd

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/epimap/dataset"
	"github.com/zalepa/epimap/observability"
)

const currentCSV = `,결핵 퍼센트,간염 퍼센트
전국,5.0%,3.0%
서울,20.0%,4.0%
부산,10.0%,2.0%
평양,9.0%,9.0%
충북,15.0%,6.0%
`

const pastCSV = `,결핵 퍼센트,간염 퍼센트
서울,10.0%,4.0%
부산,12.0%,1.0%
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLoader(t *testing.T) (*loader, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetrics(prometheus.NewRegistry())
	return newLoader(dataset.NewCache(dataset.Options{}, 4), discardLogger(), m), m
}

func loadCurrent(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(writeTemp(t, "data.csv", currentCSV), dataset.Options{})
	require.NoError(t, err)
	return ds
}
