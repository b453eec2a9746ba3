// Package pipeline runs one scrape end to end: browser session, operator
// challenge, discovery, extraction, unification, export and sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/maltedev/wheel-catalog-scraper/internal/config"
	"github.com/maltedev/wheel-catalog-scraper/internal/dom"
	"github.com/maltedev/wheel-catalog-scraper/internal/exporter"
	"github.com/maltedev/wheel-catalog-scraper/internal/models"
	"github.com/maltedev/wheel-catalog-scraper/internal/scraper"
	"github.com/maltedev/wheel-catalog-scraper/internal/table"
)

// Session is the browser side of a run.
type Session interface {
	Page() dom.Page
	WaitReady(timeout time.Duration) error
	Close() error
	Cleanup(ctx context.Context)
}

type Launcher func() (Session, error)

// Sink receives the finished run after export. Sink failures never affect
// the exported file.
type Sink interface {
	Name() string
	Record(ctx context.Context, run *models.Run, tbl *table.Table) error
}

type Deps struct {
	Launch    Launcher
	Collector scraper.Collector
	Extractor scraper.Extractor
	Exporter  *exporter.Exporter
	Sinks     []Sink

	// AwaitOperator blocks until the operator has cleared the challenge.
	AwaitOperator func(ctx context.Context) error

	Out    io.Writer
	Logger *slog.Logger
	Now    func() time.Time
}

type Runner struct {
	cfg  *config.Config
	deps Deps
}

func New(cfg *config.Config, deps Deps) *Runner {
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.AwaitOperator == nil {
		deps.AwaitOperator = func(context.Context) error { return nil }
	}
	return &Runner{cfg: cfg, deps: deps}
}

// Run performs one scrape. The returned run is never nil; an error means the
// run stopped before export.
func (r *Runner) Run(ctx context.Context) (*models.Run, error) {
	run := models.NewRun(r.cfg.Site.CategoryURL, r.deps.Now())
	logger := r.deps.Logger.With("run_id", run.ID)
	out := r.deps.Out

	logger.Info("starting run", "category_url", run.CategoryURL)

	session, err := r.deps.Launch()
	if err != nil {
		logger.Error("failed to launch browser", "error", err)
		return run, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer session.Cleanup(ctx)

	page := session.Page()

	fmt.Fprintf(out, "Opening %s\n", r.cfg.Site.HomeURL)
	if err := page.Navigate(r.cfg.Site.HomeURL); err != nil {
		return run, r.abort(logger, session, "failed to open home page", err)
	}

	if err := r.deps.AwaitOperator(ctx); err != nil {
		return run, r.abort(logger, session, "operator wait ended", err)
	}

	if err := session.WaitReady(r.cfg.Browser.PageReadyWait); err != nil {
		return run, r.abort(logger, session, "page never became ready", err)
	}
	logger.Info("page ready, starting discovery")

	links := r.deps.Collector.Collect(ctx, page, r.cfg.Site.CategoryURL)
	run.Links = len(links)
	fmt.Fprintf(out, "Found %d product links\n", len(links))

	records := r.extractAll(ctx, logger, page, links, run)

	tbl := table.Unify(records)
	run.Rows = tbl.Len()
	run.Duplicates = tbl.Duplicates()
	logger.Info("unified records", "records", run.Records, "rows", run.Rows, "columns", len(tbl.Columns))

	result, err := r.deps.Exporter.Export(tbl, r.cfg.Export.Dir, r.deps.Now())
	switch {
	case errors.Is(err, exporter.ErrNoData):
		fmt.Fprintln(out, "No data to save")
	case err != nil:
		logger.Error("export failed", "error", err)
		return run, fmt.Errorf("export failed: %w", err)
	default:
		run.OutputPath = result.Path
		fmt.Fprintf(out, "Saved %d rows to %s\n", result.Rows, result.Path)
		if result.FormatErr != nil {
			fmt.Fprintln(out, "Column formatting failed; the workbook was saved unformatted")
		}
	}

	run.FinishedAt = r.deps.Now()

	if tbl.Len() > 0 {
		r.record(ctx, logger, run, tbl)
	}

	RenderSummary(out, run)
	logger.Info("run finished", "duration", run.Duration(), "output", run.OutputPath)
	return run, nil
}

// extractAll visits links in order on the single page. Pages that yield no
// fields are counted as failed and left out.
func (r *Runner) extractAll(ctx context.Context, logger *slog.Logger, page dom.Page, links []string, run *models.Run) []*models.FieldMap {
	var records []*models.FieldMap
	for i, link := range links {
		if ctx.Err() != nil {
			logger.Warn("run canceled, skipping remaining links", "remaining", len(links)-i)
			break
		}

		fmt.Fprintf(r.deps.Out, "[%d/%d] %s\n", i+1, len(links), link)
		fields := r.deps.Extractor.Extract(ctx, page, link)
		if fields.Len() == 0 {
			run.Failed++
			continue
		}
		records = append(records, fields)
	}
	run.Records = len(records)
	return records
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, run *models.Run, tbl *table.Table) {
	for _, sink := range r.deps.Sinks {
		if err := sink.Record(ctx, run, tbl); err != nil {
			logger.Warn("sink failed", "sink", sink.Name(), "error", err)
			continue
		}
		logger.Debug("sink recorded run", "sink", sink.Name())
	}
}

func (r *Runner) abort(logger *slog.Logger, session Session, msg string, err error) error {
	logger.Error(msg, "error", err)
	if closeErr := session.Close(); closeErr != nil {
		logger.Warn("failed to close browser", "error", closeErr)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
