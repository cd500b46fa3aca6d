package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(currentCSV))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "data.csv")
	require.NoError(t, downloadFile(context.Background(), srv.Client(), srv.URL+"/data.csv", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, currentCSV, string(data))

	_, err = os.Stat(dest + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadFileBadStatusKeepsExisting(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dest := writeTemp(t, "data.csv", "old")
	err := downloadFile(context.Background(), srv.Client(), srv.URL+"/data.csv", dest)
	assert.ErrorContains(t, err, "status 404")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestDownloadFileCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(currentCSV))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dest := filepath.Join(t.TempDir(), "data.csv")
	assert.Error(t, downloadFile(ctx, srv.Client(), srv.URL, dest))

	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}
