package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCacheHitOnUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", sampleCSV)
	c := NewCache(Options{}, 4)

	ds1, hit, err := c.Load(path)
	require.NoError(t, err)
	assert.False(t, hit)

	ds2, hit, err := c.Load(path)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, ds1, ds2)

	// Same bytes under another name share the entry.
	other := writeFile(t, dir, "copy.csv", sampleCSV)
	ds3, hit, err := c.Load(other)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, ds1, ds3)
}

func TestCacheMissOnEditedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", sampleCSV)
	c := NewCache(Options{}, 4)

	_, _, err := c.Load(path)
	require.NoError(t, err)

	writeFile(t, dir, "data.csv", "region,A 퍼센트\n제주,9%\n")
	ds, hit, err := c.Load(path)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "제주", ds.Records[0].Name)
}

func TestCacheErrorsNotCached(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.csv", "region,A 퍼센트\n서울,oops\n")
	c := NewCache(Options{}, 4)

	_, _, err := c.Load(path)
	assert.ErrorIs(t, err, ErrMalformedPercent)
	assert.Equal(t, 0, c.Len())

	_, _, err = c.Load(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "region,A 퍼센트\n서울,1%\n")
	b := writeFile(t, dir, "b.csv", "region,A 퍼센트\n서울,2%\n")
	cc := writeFile(t, dir, "c.csv", "region,A 퍼센트\n서울,3%\n")
	c := NewCache(Options{}, 2)

	for _, p := range []string{a, b} {
		_, _, err := c.Load(p)
		require.NoError(t, err)
	}
	// Touch a so b becomes the eviction candidate.
	_, hit, err := c.Load(a)
	require.NoError(t, err)
	assert.True(t, hit)

	_, _, err = c.Load(cc)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, hit, _ = c.Load(a)
	assert.True(t, hit)
	_, hit, _ = c.Load(b)
	assert.False(t, hit)
}

func TestCacheSizeClamped(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.csv", "region,A 퍼센트\n서울,1%\n")
	c := NewCache(Options{}, 0)

	_, _, err := c.Load(path)
	require.NoError(t, err)
	_, hit, err := c.Load(path)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, c.Len())
}

func TestCacheOptions(t *testing.T) {
	c := NewCache(Options{NormalizeNames: true}, 2)
	assert.True(t, c.Options().NormalizeNames)
}
