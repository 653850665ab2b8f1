// Package tabfile reads CSV and XLSX files into frames
package tabfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"gotreat/domain/frame"
	"gotreat/internal"
)

// DataReader loads CSV and Excel files into typed frames, keyed off the
// file extension
type DataReader struct {
	logger *internal.Logger
}

// NewDataReader creates a reader handling both CSV and XLSX files
func NewDataReader() *DataReader {
	return &DataReader{logger: internal.DefaultLogger}
}

// Read loads the file into a typed frame
func (r *DataReader) Read(path string) (*frame.Frame, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("data file not found: %s", path)
	}

	var headers []string
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		headers, rows, err = readCSVFile(path)
	case ".xlsx":
		headers, rows, err = readExcelFile(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	f, err := frame.FromCells(headers, rows)
	if err != nil {
		return nil, fmt.Errorf("build frame from %s: %w", path, err)
	}
	r.logger.Debug("read %s: %d columns, %d rows", path, len(headers), len(rows))
	return f, nil
}

func readCSVFile(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return ReadCells(file)
}

func readExcelFile(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	return rows[0], rows[1:], nil
}

// ReadCells parses CSV content from a stream; used by surfaces that accept
// uploads instead of file paths
func ReadCells(rd io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, record)
	}
	return headers, rows, nil
}
