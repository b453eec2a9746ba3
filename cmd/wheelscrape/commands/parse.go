package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/maltedev/wheel-catalog-scraper/internal/exporter"
	"github.com/maltedev/wheel-catalog-scraper/internal/models"
	"github.com/maltedev/wheel-catalog-scraper/internal/scraper"
	"github.com/maltedev/wheel-catalog-scraper/internal/snapshot"
	unify "github.com/maltedev/wheel-catalog-scraper/internal/table"
	"github.com/spf13/cobra"
)

var (
	parseOut     string
	parsePreview bool
)

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVar(&parseOut, "out", "", "directory for the workbook; empty skips the export")
	parseCmd.Flags().BoolVar(&parsePreview, "preview", true, "print the unified table")
}

var parseCmd = &cobra.Command{
	Use:   "parse <product.html>...",
	Short: "Extract fields from saved product pages without a browser.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closeLog := newLogger(cmd.ErrOrStderr())
		defer closeLog()

		scraperCfg := cfg.Scraper
		scraperCfg.NavigationSettle = 0
		extractor := scraper.NewFieldExtractor(scraperCfg, logger)
		page := snapshot.NewPage(snapshot.FileLoader)

		var records []*models.FieldMap
		for _, arg := range args {
			path, err := filepath.Abs(arg)
			if err != nil {
				return err
			}
			fields := extractor.Extract(cmd.Context(), page, path)
			if fields.Len() == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no fields extracted from %s\n", arg)
				continue
			}
			records = append(records, fields)
		}

		tbl := unify.Unify(records)

		if parsePreview {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			header := make(table.Row, len(tbl.Columns))
			for i, column := range tbl.Columns {
				header[i] = column
			}
			t.AppendHeader(header)
			for _, row := range tbl.Rows {
				cells := make(table.Row, len(row))
				for i, v := range row {
					cells[i] = v
				}
				t.AppendRow(cells)
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
		}

		if parseOut == "" {
			return nil
		}

		result, err := exporter.New(logger).Export(tbl, parseOut, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d rows to %s\n", result.Rows, result.Path)
		return nil
	},
}
