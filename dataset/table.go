package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// Table is a raw source table: one header row and text cells.
type Table struct {
	Header []string
	Rows   [][]string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile reads a .csv or .xlsx file into a Table.
func ReadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return decode(path, data)
}

func decode(path string, data []byte) (Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", "":
		return ReadCSV(bytes.NewReader(data))
	case ".xlsx":
		return ReadXLSX(bytes.NewReader(data))
	default:
		return Table{}, fmt.Errorf("unsupported file type %q", ext)
	}
}

// ReadCSV parses CSV text. Every cell is kept as text; type detection is off
// so percentage strings reach Prepare untouched.
func ReadCSV(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	// gota rejects a frame without data rows, so a header-only file is
	// returned as an empty table and Prepare reports ErrNoData.
	header, hasRows, err := sniffCSV(data)
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}
	if !hasRows {
		return Table{Header: header}, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", df.Err)
	}

	records := df.Records()
	if len(records) == 0 {
		return Table{}, fmt.Errorf("parse csv: %w", ErrNoData)
	}
	return Table{Header: records[0], Rows: records[1:]}, nil
}

// sniffCSV reads the header row and reports whether any record follows it.
func sniffCSV(data []byte) ([]string, bool, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, false, ErrNoData
	}
	if err != nil {
		return nil, false, err
	}
	_, err = r.Read()
	if errors.Is(err, io.EOF) {
		return header, false, nil
	}
	return header, true, nil
}

// ReadXLSX reads the first sheet of a workbook. Short rows are padded to the
// header width.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return Table{}, fmt.Errorf("read xlsx rows: %w", err)
	}
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("read xlsx: %w", ErrNoData)
	}

	t := Table{Header: rows[0]}
	for _, row := range rows[1:] {
		for len(row) < len(t.Header) {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
