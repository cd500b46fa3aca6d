package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zalepa/epimap/config"
	"github.com/zalepa/epimap/dataset"
	"github.com/zalepa/epimap/observability"
)

// Snapshot labels used in logs and metrics.
const (
	snapshotCurrent = "current"
	snapshotPast    = "past"
)

// session carries what every subcommand needs: settings, a logger, and a
// loader for the two input files.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	loader *loader
}

// newSession loads config and exits on failure, like the other subcommand
// entry points.
func newSession() *session {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	opts, err := cfg.DatasetOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return &session{
		cfg:    cfg,
		logger: logger,
		loader: newLoader(dataset.NewCache(opts, cfg.CacheSize), logger, nil),
	}
}

// loader reads and prepares snapshots through the cache, logging what
// preparation dropped. metrics may be nil.
type loader struct {
	cache   *dataset.Cache
	logger  *slog.Logger
	metrics *observability.Metrics
}

func newLoader(cache *dataset.Cache, logger *slog.Logger, metrics *observability.Metrics) *loader {
	return &loader{cache: cache, logger: logger, metrics: metrics}
}

func (l *loader) load(path, snapshot string) (*dataset.Dataset, error) {
	start := time.Now()
	ds, hit, err := l.cache.Load(path)
	if l.metrics != nil {
		l.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		l.observeLoad(snapshot, "error")
		l.logger.Error("dataset load failed", "snapshot", snapshot, "path", path, "error", err)
		return nil, err
	}
	l.observeLoad(snapshot, "ok")

	if l.metrics != nil {
		result := "miss"
		if hit {
			result = "hit"
		}
		l.metrics.DatasetCache.WithLabelValues(result).Inc()
	}
	if hit {
		return ds, nil
	}

	for _, d := range ds.Dropped {
		l.logger.Debug("row dropped", "snapshot", snapshot, "line", d.Line, "name", d.Name, "reason", d.Reason)
		if l.metrics != nil {
			l.metrics.RowsDropped.WithLabelValues(d.Reason).Inc()
		}
	}
	if l.metrics != nil && snapshot == snapshotCurrent {
		l.metrics.RecordsRetained.Set(float64(len(ds.Records)))
	}
	l.logger.Info("dataset prepared",
		"snapshot", snapshot,
		"path", path,
		"records", len(ds.Records),
		"metrics", len(ds.Metrics),
		"dropped", len(ds.Dropped),
	)
	return ds, nil
}

// regionNames maps names typed by a user onto record names the way
// preparation maps source rows, so "서울특별시" finds 서울 exactly when
// source names are normalized too.
func (l *loader) regionNames(names []string) []string {
	opts := l.cache.Options()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = opts.RegionName(n)
	}
	return out
}

func (l *loader) observeLoad(snapshot, outcome string) {
	if l.metrics != nil {
		l.metrics.DatasetLoads.WithLabelValues(snapshot, outcome).Inc()
	}
}

// selectMetric resolves the metric to display. An explicit request must
// exist; otherwise the first known metric present in the dataset wins, then
// the first discovered column.
func selectMetric(ds *dataset.Dataset, requested string, known []string) (string, error) {
	if requested != "" {
		if !ds.HasMetric(requested) {
			return "", fmt.Errorf("%w: %q; valid options: %s", dataset.ErrUnknownMetric, requested, quoteList(ds.Metrics))
		}
		return requested, nil
	}
	for _, k := range known {
		if ds.HasMetric(k) {
			return k, nil
		}
	}
	if len(ds.Metrics) == 0 {
		return "", dataset.ErrNoMetrics
	}
	return ds.Metrics[0], nil
}
