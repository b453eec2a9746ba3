package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/maltedev/wheel-catalog-scraper/internal/models"
)

// RenderSummary prints the run totals as a table.
func RenderSummary(w io.Writer, run *models.Run) {
	output := run.OutputPath
	if output == "" {
		output = "-"
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Run %s", run.ID)
	t.AppendRows([]table.Row{
		{"Product links", run.Links},
		{"Records", run.Records},
		{"Failed pages", run.Failed},
		{"Duplicate rows", run.Duplicates},
		{"Rows exported", run.Rows},
		{"Duration", run.Duration().Round(time.Second)},
		{"Output", output},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
	fmt.Fprintln(w)
}
