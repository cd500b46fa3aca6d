package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zalepa/epimap/dataset"
	"github.com/zalepa/epimap/geo"
)

// Map implements the "map" subcommand: prepare the current dataset, style
// every region for one metric, and print the ranked table. With --pdf or
// --png the marker map is rendered as well.
func Map(args []string) {
	s := newSession()

	fs := flag.NewFlagSet("map", flag.ExitOnError)
	data := fs.String("data", s.cfg.DataFile, "current dataset (.csv or .xlsx)")
	metric := fs.String("metric", "", "metric column to display (default: first known metric, else first column)")
	highlight := fs.String("highlight", "", "comma-separated regions drawn as pins")
	pdfOut := fs.String("pdf", "", "write the map and ranked table to a PDF file")
	pngOut := fs.String("png", "", "write the map to a PNG file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: epimap map [data.csv] [flags]

Show regional rates for one metric as a ranked table and marker map.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  epimap map data.csv
  epimap map --metric "결핵 퍼센트" --pdf map.pdf
  epimap map --highlight 서울,부산 --png map.png
`)
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*data = fs.Arg(0)
	}

	ds, err := s.loader.load(*data, snapshotCurrent)
	if err != nil {
		exitLoadError(err)
	}

	selected, err := selectMetric(ds, *metric, s.cfg.KnownMetrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	styled, err := dataset.Style(ds, selected)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	rows, err := dataset.Rank(ds, selected)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	pins := s.loader.regionNames(splitList(*highlight))
	for _, name := range pins {
		if _, ok := ds.Find(name); !ok {
			fmt.Fprintf(os.Stderr, "warning: highlighted region %q is not in the dataset\n", name)
		}
	}

	writeMapTable(os.Stdout, selected, styled, rows, ds.Dropped)

	if *pdfOut != "" {
		if err := renderMapPDF(*pdfOut, selected, styled, rows, pins); err != nil {
			fmt.Fprintf(os.Stderr, "error writing PDF: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *pdfOut)
	}
	if *pngOut != "" {
		if err := renderMapPNG(*pngOut, selected, styled, pins); err != nil {
			fmt.Fprintf(os.Stderr, "error writing PNG: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *pngOut)
	}
}

// exitLoadError reports a failed load. An empty result set gets the plain
// "no data" message instead of an error.
func exitLoadError(err error) {
	if errors.Is(err, dataset.ErrNoData) {
		fmt.Fprintln(os.Stderr, "no data: every row was excluded")
	} else {
		fmt.Fprintf(os.Stderr, "error loading data: %v\n", err)
	}
	os.Exit(1)
}

// writeMapTable prints the ranked rows with each region's marker attributes.
func writeMapTable(w io.Writer, metric string, styled []dataset.Styled, rows []dataset.Row, dropped []dataset.DroppedRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, metric)
		fmt.Fprintln(w, "(no data)")
		return
	}

	byName := make(map[string]dataset.Styled, len(styled))
	names := make([]string, 0, len(rows))
	maxVal := 0.0
	for _, s := range styled {
		byName[s.Name] = s
	}
	for _, r := range rows {
		names = append(names, r.Region)
		if r.Value > maxVal {
			maxVal = r.Value
		}
	}
	nameW := maxWidth(names, 8)

	fmt.Fprintln(w, metric)
	fmt.Fprintf(w, "%d regions, view centered on %.1f, %.1f\n\n", len(rows), geo.Center.Lat, geo.Center.Lon)

	header := padRight("Region", nameW) + "  " + padLeft("Value", 10) + "  " +
		padLeft("Lat", 8) + "  " + padLeft("Lon", 9) + "  " + padRight("Color", 9) + "  " + "Radius"
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("─", nameW+2+10+2+8+2+9+2+9+2+10+2+20))

	for _, r := range rows {
		s := byName[r.Region]
		fmt.Fprintf(w, "%s  %s  %8.4f  %9.4f  %s  %10s  %s\n",
			padRight(r.Region, nameW),
			padLeft(formatValue(r.Value), 10),
			s.Coordinate.Lat,
			s.Coordinate.Lon,
			hexColor(s.Color),
			strconv.FormatFloat(s.Radius, 'f', 0, 64),
			bar(r.Value, maxVal, 20),
		)
	}

	if len(dropped) > 0 {
		parts := make([]string, len(dropped))
		for i, d := range dropped {
			parts[i] = fmt.Sprintf("%s (%s)", d.Name, d.Reason)
		}
		fmt.Fprintf(w, "\nexcluded: %s\n", strings.Join(parts, ", "))
	}
}

func renderMapPDF(path, metric string, styled []dataset.Styled, rows []dataset.Row, pins []string) error {
	mp, err := mapPlot(metric, styled, pins)
	if err != nil {
		return err
	}
	colors := make(map[string]dataset.RGBA, len(styled))
	for _, s := range styled {
		colors[s.Name] = s.Color
	}
	props := map[string]string{
		"Metric":    metric,
		"Regions":   strconv.Itoa(len(rows)),
		"Generator": "epimap",
	}
	return writePDF(path, props,
		plotPage{p: mp},
		rankPage{title: metric, metric: metric, rows: rows, colors: colors},
	)
}

func renderMapPNG(path, metric string, styled []dataset.Styled, pins []string) error {
	mp, err := mapPlot(metric, styled, pins)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writePNG(f, mp); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
