// Package exporter writes the unified table to a date-stamped workbook.
package exporter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/maltedev/wheel-catalog-scraper/internal/table"
	"github.com/xuri/excelize/v2"
)

var ErrNoData = errors.New("no data to save")

const (
	sheet          = "Sheet1"
	filePrefix     = "method_race_wheels_sample_scrape_data_"
	dateLayout     = "2006_01_02"
	widthPadding   = 2
	maxColumnWidth = 255
)

type Result struct {
	Path string
	Rows int

	// FormatErr is set when the data was saved but column sizing failed.
	FormatErr error
}

type Exporter struct {
	logger *slog.Logger
}

var autofit = Autofit

func New(logger *slog.Logger) *Exporter {
	return &Exporter{logger: logger.With("component", "exporter")}
}

// FileName returns the workbook name for a run on date.
func FileName(date time.Time) string {
	return filePrefix + date.Format(dateLayout) + ".xlsx"
}

// Export writes tbl into dir and sizes its columns. An existing file with the
// same name is replaced.
func (e *Exporter) Export(tbl *table.Table, dir string, date time.Time) (Result, error) {
	if tbl == nil || tbl.Len() == 0 {
		e.logger.Warn("No data to save")
		return Result{}, ErrNoData
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, FileName(date))
	if err := write(path, tbl); err != nil {
		return Result{}, fmt.Errorf("failed to write workbook: %w", err)
	}

	result := Result{Path: path, Rows: tbl.Len()}
	e.logger.Info("workbook saved", "path", path, "rows", result.Rows, "columns", len(tbl.Columns))

	if err := autofit(path); err != nil {
		result.FormatErr = err
		e.logger.Warn("failed to size columns, keeping unformatted workbook", "path", path, "error", err)
	}

	return result, nil
}

func write(path string, tbl *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(tbl.Columns))
	for i, column := range tbl.Columns {
		header[i] = column
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, row := range tbl.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cellAddr, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cellAddr, cells); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// Autofit reopens a saved workbook and widens each column to its longest cell.
func Autofit(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to reopen workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	for col, width := range columnWidths(rows) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", name, err)
		}
	}

	return f.Save()
}

func columnWidths(rows [][]string) []float64 {
	var longest []int
	for _, row := range rows {
		for i, cell := range row {
			for len(longest) <= i {
				longest = append(longest, 0)
			}
			longest[i] = max(longest[i], utf8.RuneCountInString(cell))
		}
	}

	widths := make([]float64, len(longest))
	for i, n := range longest {
		widths[i] = float64(min(n+widthPadding, maxColumnWidth))
	}
	return widths
}
