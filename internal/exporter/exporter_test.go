package exporter

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maltedev/wheel-catalog-scraper/internal/models"
	"github.com/maltedev/wheel-catalog-scraper/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestExporter() *Exporter {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleTable() *table.Table {
	return table.Unify([]*models.FieldMap{
		models.FieldMapOf("Part Number", "MR30578550500", "Overview", "Built for the trail.", "Bullet 1", "Flow-formed"),
		models.FieldMapOf("Part Number", "MR70178516800", "Finish", "Matte Bronze"),
	})
}

func TestFileName(t *testing.T) {
	date := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "method_race_wheels_sample_scrape_data_2024_03_05.xlsx", FileName(date))
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Desktop")
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	result, err := newTestExporter().Export(sampleTable(), dir, date)
	require.NoError(t, err)
	require.NoError(t, result.FormatErr)

	assert.Equal(t, filepath.Join(dir, "method_race_wheels_sample_scrape_data_2024_03_05.xlsx"), result.Path)
	assert.Equal(t, 2, result.Rows)

	f, err := excelize.OpenFile(result.Path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Overview", "Part Number", "Bullet 1", "Finish"}, rows[0])
	assert.Equal(t, []string{"Built for the trail.", "MR30578550500", "Flow-formed"}, rows[1])
	assert.Equal(t, []string{"", "MR70178516800", "", "Matte Bronze"}, rows[2])

	width, err := f.GetColWidth("Sheet1", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Built for the trail.")+widthPadding), width)
}

func TestExportOverwrites(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	exp := newTestExporter()

	_, err := exp.Export(sampleTable(), dir, date)
	require.NoError(t, err)

	smaller := table.Unify([]*models.FieldMap{models.FieldMapOf("Part Number", "X1")})
	result, err := exp.Export(smaller, dir, date)
	require.NoError(t, err)

	f, err := excelize.OpenFile(result.Path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Part Number"}, {"X1"}}, rows)
}

func TestExportNoData(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	_, err := newTestExporter().Export(table.Unify(nil), dir, time.Now())
	assert.ErrorIs(t, err, ErrNoData)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExportKeepsUnformattedWorkbookWhenSizingFails(t *testing.T) {
	orig := autofit
	t.Cleanup(func() { autofit = orig })
	autofit = func(string) error { return errors.New("sheet locked") }

	dir := t.TempDir()
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	result, err := newTestExporter().Export(sampleTable(), dir, date)
	require.NoError(t, err)
	assert.EqualError(t, result.FormatErr, "sheet locked")
	assert.Equal(t, 2, result.Rows)

	f, err := excelize.OpenFile(result.Path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Overview", "Part Number", "Bullet 1", "Finish"}, rows[0])
	assert.Equal(t, []string{"", "MR70178516800", "", "Matte Bronze"}, rows[2])
}

func TestAutofitMissingFile(t *testing.T) {
	assert.Error(t, Autofit(filepath.Join(t.TempDir(), "missing.xlsx")))
}

func TestColumnWidths(t *testing.T) {
	rows := [][]string{
		{"Overview", "Part Number"},
		{"ünïcode", "x", "extra"},
	}

	assert.Equal(t, []float64{10, 13, 7}, columnWidths(rows))

	long := make([]rune, 400)
	for i := range long {
		long[i] = 'a'
	}
	assert.Equal(t, []float64{maxColumnWidth}, columnWidths([][]string{{string(long)}}))
}
