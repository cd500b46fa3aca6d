package cmd

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zalepa/epimap/dataset"
	"github.com/zalepa/epimap/geo"
	"github.com/zalepa/epimap/observability"
	"github.com/zalepa/epimap/trend"
)

//go:embed web.html
var htmlContent embed.FS

type metadata struct {
	Metrics []labelValue   `json:"metrics"`
	Default string         `json:"default"`
	Regions []string       `json:"regions"`
	Years   trend.Years    `json:"years"`
	Center  geo.Coordinate `json:"center"`
}

type labelValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Known bool   `json:"known"`
}

type marker struct {
	dataset.Styled
	Tooltip     string `json:"tooltip"`
	Highlighted bool   `json:"highlighted"`
}

type mapResponse struct {
	Metric  string         `json:"metric"`
	Center  geo.Coordinate `json:"center"`
	Markers []marker       `json:"markers"`
}

type tableResponse struct {
	Metric string        `json:"metric"`
	Rows   []dataset.Row `json:"rows"`
}

type missData struct {
	Region string `json:"region"`
	Metric string `json:"metric"`
	Error  string `json:"error"`
}

type trendResponse struct {
	Years   trend.Years    `json:"years"`
	Samples []trend.Sample `json:"samples"`
	Misses  []missData     `json:"misses"`
}

// server answers dashboard requests. Every request re-reads the snapshots
// through the loader, so an edited file shows up on the next request.
type server struct {
	dataPath string
	pastPath string
	known    []string
	years    trend.Years

	loader   *loader
	logger   *slog.Logger
	metrics  *observability.Metrics
	registry *prometheus.Registry
}

// Web implements the "web" subcommand.
func Web(args []string) {
	s := newSession()
	defYears := defaultYears(s.cfg.PastYear, s.cfg.FutureOffset)

	fs := flag.NewFlagSet("web", flag.ExitOnError)
	data := fs.String("data", s.cfg.DataFile, "current dataset (.csv or .xlsx)")
	pastData := fs.String("past-data", s.cfg.PastDataFile, "past-year dataset, same shape")
	port := fs.String("port", s.cfg.HTTPPort, "HTTP server port")
	past := fs.Int("past", defYears.Past, "year of the past dataset")
	current := fs.Int("current", defYears.Current, "year of the current dataset")
	future := fs.Int("future", 0, fmt.Sprintf("year to project to (default: current + %d)", s.cfg.FutureOffset))

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: epimap web [data.csv] [--port 8080]\n\nStart an interactive web dashboard.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*data = fs.Arg(0)
	}
	y := trend.Years{Past: *past, Current: *current, Future: *future}
	if y.Future == 0 {
		y.Future = y.Current + s.cfg.FutureOffset
	}
	if err := y.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	s.loader.metrics = metrics

	// Load once up front so a broken file is reported before serving.
	if _, err := s.loader.load(*data, snapshotCurrent); err != nil {
		if errors.Is(err, dataset.ErrNoData) {
			fmt.Fprintf(os.Stderr, "warning: %s has no mappable rows, serving empty data\n", *data)
		} else {
			fmt.Fprintf(os.Stderr, "error loading data: %v\n", err)
			os.Exit(1)
		}
	}

	srv := &server{
		dataPath: *data,
		pastPath: *pastData,
		known:    s.cfg.KnownMetrics,
		years:    y,
		loader:   s.loader,
		logger:   s.logger,
		metrics:  metrics,
		registry: reg,
	}

	httpSrv := &http.Server{
		Addr:              ":" + *port,
		Handler:           srv.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("serving on http://localhost%s\n", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown failed", "error", err)
		}
	}
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/metadata", s.handleMetadata)
	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("GET /api/table", s.handleTable)
	mux.HandleFunc("GET /api/map.png", s.handleMapPNG)
	mux.HandleFunc("GET /api/trend", s.handleTrend)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s.instrument(mux)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts requests by matched route pattern and status.
func (s *server) instrument(next *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		_, route := next.Handler(r)
		if route == "" {
			route = "unmatched"
		}
		next.ServeHTTP(rec, r)
		if s.metrics != nil {
			s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		}
	})
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, _ := htmlContent.ReadFile("web.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.current(w)
	if !ok {
		return
	}
	def, _ := selectMetric(ds, "", s.known)

	metrics := make([]labelValue, len(ds.Metrics))
	for i, m := range ds.Metrics {
		metrics[i] = labelValue{Value: m, Label: m, Known: contains(s.known, m)}
	}
	regions := make([]string, len(ds.Records))
	for i, rec := range ds.Records {
		regions[i] = rec.Name
	}
	writeJSON(w, http.StatusOK, metadata{
		Metrics: metrics,
		Default: def,
		Regions: regions,
		Years:   s.years,
		Center:  geo.Center,
	})
}

func (s *server) handleMap(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.current(w)
	if !ok {
		return
	}
	metric, ok := s.metric(w, r, ds)
	if !ok {
		return
	}
	styled, err := dataset.Style(ds, metric)
	if err != nil {
		s.writeError(w, err)
		return
	}
	pins := s.loader.regionNames(splitList(r.URL.Query().Get("highlight")))
	markers := make([]marker, len(styled))
	for i, st := range styled {
		markers[i] = marker{Styled: st, Tooltip: st.Tooltip(), Highlighted: contains(pins, st.Name)}
	}
	writeJSON(w, http.StatusOK, mapResponse{Metric: metric, Center: geo.Center, Markers: markers})
}

func (s *server) handleTable(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.current(w)
	if !ok {
		return
	}
	metric, ok := s.metric(w, r, ds)
	if !ok {
		return
	}
	rows, err := dataset.Rank(ds, metric)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tableResponse{Metric: metric, Rows: rows})
}

func (s *server) handleMapPNG(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.current(w)
	if !ok {
		return
	}
	metric, ok := s.metric(w, r, ds)
	if !ok {
		return
	}
	styled, err := dataset.Style(ds, metric)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := mapPlot(metric, styled, s.loader.regionNames(splitList(r.URL.Query().Get("highlight"))))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := writePNG(w, p); err != nil {
		s.logger.Error("render png", "metric", metric, "error", err)
	}
}

func (s *server) handleTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	regions := s.loader.regionNames(splitList(q.Get("region")))
	if len(regions) == 0 || len(regions) > maxHighlighted {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("region takes one or two names, got %d", len(regions)),
		})
		return
	}

	ds, ok := s.current(w)
	if !ok {
		return
	}
	metrics := ds.Metrics
	if q.Get("metric") != "" {
		metric, ok := s.metric(w, r, ds)
		if !ok {
			return
		}
		metrics = []string{metric}
	}

	pastDS, err := s.loader.load(s.pastPath, snapshotPast)
	if err != nil {
		s.logger.Warn("past dataset unavailable", "path", s.pastPath, "error", err)
	}
	p := trend.Predictor{Past: pastDS, Current: ds}
	samples, misses := p.PredictAll(regions, metrics, s.years)

	resp := trendResponse{Years: s.years, Samples: samples, Misses: make([]missData, len(misses))}
	for i, m := range misses {
		resp.Misses[i] = missData{Region: m.Region, Metric: m.Metric, Error: m.Err.Error()}
	}
	if resp.Samples == nil {
		resp.Samples = []trend.Sample{}
	}
	if s.metrics != nil {
		s.metrics.Predictions.WithLabelValues("ok").Add(float64(len(samples)))
		s.metrics.Predictions.WithLabelValues("miss").Add(float64(len(misses)))
	}
	writeJSON(w, http.StatusOK, resp)
}

// current loads the current snapshot, answering 503 when it has no rows.
func (s *server) current(w http.ResponseWriter) (*dataset.Dataset, bool) {
	ds, err := s.loader.load(s.dataPath, snapshotCurrent)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return ds, true
}

// metric resolves the ?metric= parameter, answering 400 when it names a
// column the dataset doesn't have.
func (s *server) metric(w http.ResponseWriter, r *http.Request, ds *dataset.Dataset) (string, bool) {
	metric, err := selectMetric(ds, r.URL.Query().Get("metric"), s.known)
	if err != nil {
		s.writeError(w, err)
		return "", false
	}
	return metric, true
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dataset.ErrNoData), errors.Is(err, dataset.ErrNoMetrics):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no data"})
	case errors.Is(err, dataset.ErrUnknownMetric):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
