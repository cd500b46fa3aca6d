package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data.csv", cfg.DataFile)
	assert.Equal(t, "data_past.csv", cfg.PastDataFile)
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "퍼센트", cfg.Marker)
	assert.Empty(t, cfg.RegionColumn)
	assert.Equal(t, []string{"전국", "nationwide"}, cfg.Sentinels)
	assert.Empty(t, cfg.ExtraRegions)
	assert.Equal(t, 2015, cfg.PastYear)
	assert.Equal(t, 10, cfg.FutureOffset)
	assert.Empty(t, cfg.KnownMetrics)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 8, cfg.CacheSize)
	assert.False(t, cfg.NormalizeNames)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_FILE", "rates.xlsx")
	t.Setenv("PAST_DATA_FILE", "rates-2015.xlsx")
	t.Setenv("PERCENT_MARKER", "rate")
	t.Setenv("REGION_COLUMN", "지역")
	t.Setenv("SENTINELS", "전국, 합계")
	t.Setenv("EXTRA_REGION", "포항=36.019,129.3435; 창원=35.2280,128.6811")
	t.Setenv("PAST_YEAR", "2010")
	t.Setenv("FUTURE_OFFSET", "5")
	t.Setenv("KNOWN_METRICS", "결핵 퍼센트,간염 퍼센트")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("CACHE_SIZE", "2")
	t.Setenv("NORMALIZE_NAMES", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "rates.xlsx", cfg.DataFile)
	assert.Equal(t, "rate", cfg.Marker)
	// Configured sentinels add to the defaults.
	assert.Equal(t, []string{"전국", "nationwide", "합계"}, cfg.Sentinels)
	assert.True(t, cfg.NormalizeNames)
	assert.Equal(t, []string{"포항=36.019,129.3435", "창원=35.2280,128.6811"}, cfg.ExtraRegions)
	assert.Equal(t, 2010, cfg.PastYear)
	assert.Equal(t, 5, cfg.FutureOffset)
	assert.Equal(t, []string{"결핵 퍼센트", "간염 퍼센트"}, cfg.KnownMetrics)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2, cfg.CacheSize)

	opts, err := cfg.DatasetOptions()
	require.NoError(t, err)
	assert.Equal(t, 19, opts.Regions.Len())
	assert.Equal(t, "지역", opts.RegionColumn)
	assert.True(t, opts.NormalizeNames)
	assert.Equal(t, "서울", opts.RegionName("서울특별시"))
	_, ok := opts.Regions.Lookup("창원")
	assert.True(t, ok)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PAST_YEAR", "last year"},
		{"FUTURE_OFFSET", "0"},
		{"FUTURE_OFFSET", "x"},
		{"CACHE_SIZE", "-1"},
		{"LOG_FORMAT", "xml"},
		{"EXTRA_REGION", "포항=north,east"},
		{"NORMALIZE_NAMES", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DATA_DIR=/srv/epimap\nHTTP_PORT=7000\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("DATA_DIR")
		os.Unsetenv("HTTP_PORT")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/epimap", cfg.DataDir)
	assert.Equal(t, "7000", cfg.HTTPPort)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
