package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/zalepa/epimap/dataset"
	"github.com/zalepa/epimap/trend"
)

// maxHighlighted caps how many regions one trend panel compares.
const maxHighlighted = 2

// clock supplies the current year; tests swap in a fake.
var clock = clockwork.NewRealClock()

// Predict implements the "predict" subcommand: extrapolate each tracked
// metric for one or two regions from the past snapshot through the current
// one to a future year.
func Predict(args []string) {
	s := newSession()
	defYears := defaultYears(s.cfg.PastYear, s.cfg.FutureOffset)

	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	data := fs.String("data", s.cfg.DataFile, "current dataset (.csv or .xlsx)")
	pastData := fs.String("past-data", s.cfg.PastDataFile, "past-year dataset, same shape")
	regions := fs.String("region", "", "one or two comma-separated regions (required)")
	metrics := fs.String("metrics", "", "comma-separated metrics (default: every metric in the current dataset)")
	past := fs.Int("past", defYears.Past, "year of the past dataset")
	current := fs.Int("current", defYears.Current, "year of the current dataset")
	future := fs.Int("future", 0, fmt.Sprintf("year to project to (default: current + %d)", s.cfg.FutureOffset))
	pdfOut := fs.String("pdf", "", "write bar and line charts to a PDF file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: epimap predict --region 서울[,부산] [flags]

Project each metric linearly from the past year through the current year.

Flags:
`)
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	names := s.loader.regionNames(splitList(*regions))
	if len(names) == 0 || len(names) > maxHighlighted {
		fmt.Fprintf(os.Stderr, "--region takes one or two regions, got %d\n", len(names))
		fs.Usage()
		os.Exit(1)
	}
	y := trend.Years{Past: *past, Current: *current, Future: *future}
	if y.Future == 0 {
		y.Future = y.Current + s.cfg.FutureOffset
	}
	if err := y.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cur, err := s.loader.load(*data, snapshotCurrent)
	if err != nil {
		exitLoadError(err)
	}
	// A missing past snapshot leaves every pair unavailable rather than
	// aborting; the misses say why.
	pastDS, err := s.loader.load(*pastData, snapshotPast)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: past dataset unavailable: %v\n", err)
	}

	wanted := splitList(*metrics)
	if len(wanted) == 0 {
		wanted = cur.Metrics
	}

	p := trend.Predictor{Past: pastDS, Current: cur}
	samples, misses := p.PredictAll(names, wanted, y)
	for _, m := range misses {
		s.logger.Debug("prediction unavailable", "region", m.Region, "metric", m.Metric, "error", m.Err)
	}

	writePredictions(os.Stdout, y, samples, misses)

	if len(samples) == 0 {
		os.Exit(1)
	}
	if *pdfOut != "" {
		if err := renderTrendPDF(*pdfOut, names, samples); err != nil {
			fmt.Fprintf(os.Stderr, "error writing PDF: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *pdfOut)
	}
}

func defaultYears(pastYear, offset int) trend.Years {
	y := trend.DefaultYears(clock)
	y.Past = pastYear
	y.Future = y.Current + offset
	return y
}

// writePredictions prints samples grouped by region, then the unavailable
// pairs.
func writePredictions(w io.Writer, y trend.Years, samples []trend.Sample, misses []trend.Miss) {
	metricNames := make([]string, 0, len(samples))
	for _, s := range samples {
		metricNames = append(metricNames, s.Metric)
	}
	metricW := maxWidth(metricNames, 6)

	fmt.Fprintf(w, "Trend %d → %d → %d (linear)\n", y.Past, y.Current, y.Future)

	region := ""
	for _, s := range samples {
		if s.Region != region {
			region = s.Region
			fmt.Fprintf(w, "\n%s\n", region)
			fmt.Fprintf(w, "  %s  %s  %s  %s  %s\n",
				padRight("Metric", metricW),
				padLeft(strconv.Itoa(y.Past), 10),
				padLeft(strconv.Itoa(y.Current), 10),
				padLeft(strconv.Itoa(y.Future)+"*", 10),
				"Growth")
		}
		fmt.Fprintf(w, "  %s  %s  %s  %s  %s\n",
			padRight(s.Metric, metricW),
			padLeft(formatValue(s.Past), 10),
			padLeft(formatValue(s.Current), 10),
			padLeft(formatValue(s.Predicted), 10),
			formatGrowth(s.AnnualGrowth))
	}
	if len(samples) == 0 {
		fmt.Fprintln(w, "\n(no data)")
	} else {
		fmt.Fprintln(w, "\n* predicted")
	}

	if len(misses) > 0 {
		fmt.Fprintf(w, "\nunavailable (%d):\n", len(misses))
		for _, m := range misses {
			fmt.Fprintf(w, "  %s\n", m.Error())
		}
	}
}

func renderTrendPDF(path string, regions []string, samples []trend.Sample) error {
	var pages []pdfPage
	for _, region := range regions {
		var rs []trend.Sample
		for _, s := range samples {
			if s.Region == region {
				rs = append(rs, s)
			}
		}
		if len(rs) == 0 {
			continue
		}
		bars, err := trendBarPlot(region, rs)
		if err != nil {
			return err
		}
		lines, err := trendLinePlot(region+" trend", rs)
		if err != nil {
			return err
		}
		pages = append(pages, plotPage{p: bars}, plotPage{p: lines})
	}
	if len(pages) == 0 {
		return dataset.ErrNoData
	}
	y := samples[0].Years
	props := map[string]string{
		"Regions":   strings.Join(regions, ","),
		"Years":     fmt.Sprintf("%d-%d-%d", y.Past, y.Current, y.Future),
		"Generator": "epimap",
	}
	return writePDF(path, props, pages...)
}
