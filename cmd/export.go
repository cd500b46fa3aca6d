package cmd

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zalepa/epimap/dataset"
)

const exportSheet = "regions"

// Export implements the "export" subcommand: write the prepared dataset with
// coordinates and geohash to CSV, JSON, or XLSX. The CSV and XLSX forms can be
// loaded again as input.
func Export(args []string) {
	s := newSession()

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	data := fs.String("data", s.cfg.DataFile, "dataset to export (.csv or .xlsx)")
	out := fs.String("out", "", "output file; format from extension (.csv, .json, .xlsx)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: epimap export [data.csv] --out regions.json\n\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*data = fs.Arg(0)
	}
	if *out == "" {
		fs.Usage()
		os.Exit(1)
	}

	ds, err := s.loader.load(*data, snapshotCurrent)
	if err != nil {
		exitLoadError(err)
	}
	if err := exportDataset(*out, ds); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s: %d regions, %d metrics, %d excluded → %s\n",
		filepath.Base(*data), len(ds.Records), len(ds.Metrics), len(ds.Dropped), *out)
}

func exportDataset(path string, ds *dataset.Dataset) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return writeCSV(path, ds)
	case ".json":
		return writeJSONFile(path, ds)
	case ".xlsx":
		return writeXLSX(path, ds)
	default:
		return fmt.Errorf("export %s: unsupported format %q", path, ext)
	}
}

func exportHeader(ds *dataset.Dataset) []string {
	return append([]string{"region", "lat", "lon", "geohash"}, ds.Metrics...)
}

func writeCSV(path string, ds *dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader(ds)); err != nil {
		return err
	}
	for _, r := range ds.Records {
		row := []string{
			r.Name,
			strconv.FormatFloat(r.Coordinate.Lat, 'f', -1, 64),
			strconv.FormatFloat(r.Coordinate.Lon, 'f', -1, 64),
			r.Geohash,
		}
		for _, m := range ds.Metrics {
			row = append(row, dataset.FormatPercent(r.Values[m]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeJSONFile(path string, ds *dataset.Dataset) error {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeXLSX(path string, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return err
	}

	header := exportHeader(ds)
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &headerRow); err != nil {
		return err
	}

	for i, r := range ds.Records {
		row := []any{r.Name, r.Coordinate.Lat, r.Coordinate.Lon, r.Geohash}
		for _, m := range ds.Metrics {
			row = append(row, r.Values[m])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
