package commands

import (
	"context"
	"log/slog"

	"github.com/maltedev/wheel-catalog-scraper/internal/archive"
	"github.com/maltedev/wheel-catalog-scraper/internal/browser"
	"github.com/maltedev/wheel-catalog-scraper/internal/events"
	"github.com/maltedev/wheel-catalog-scraper/internal/exporter"
	"github.com/maltedev/wheel-catalog-scraper/internal/pipeline"
	"github.com/maltedev/wheel-catalog-scraper/internal/scraper"
	"github.com/spf13/cobra"
)

var (
	headless  bool
	exportDir string
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&headless, "headless", false, "run the browser without a window")
	runCmd.Flags().StringVar(&exportDir, "out", "", "directory for the workbook (defaults to export.dir)")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open a browser, wait for the operator to clear the challenge, then scrape and export the catalog.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("headless") {
			cfg.Browser.Headless = headless
		}
		if exportDir != "" {
			cfg.Export.Dir = exportDir
		}

		logger, closeLog := newLogger(cmd.OutOrStdout())
		defer closeLog()

		sinks, closeSinks := openSinks(ctx, logger)
		defer closeSinks()

		opts := browser.OptionsFromConfig(cfg.Browser)
		runner := pipeline.New(cfg, pipeline.Deps{
			Launch: func() (pipeline.Session, error) {
				session, err := browser.Launch(opts, logger)
				if err != nil {
					return nil, err
				}
				return session, nil
			},
			Collector: scraper.NewLinkCollector(cfg.Site, cfg.Scraper, logger),
			Extractor: scraper.NewFieldExtractor(cfg.Scraper, logger),
			Exporter:  exporter.New(logger),
			Sinks:     sinks,
			AwaitOperator: func(ctx context.Context) error {
				return browser.AwaitOperator(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			},
			Out:    cmd.OutOrStdout(),
			Logger: logger,
		})

		_, err := runner.Run(ctx)
		return err
	},
}

// openSinks connects the optional archive and event sinks. A sink that cannot
// connect is skipped with a warning.
func openSinks(ctx context.Context, logger *slog.Logger) ([]pipeline.Sink, func()) {
	var sinks []pipeline.Sink
	var closers []func()

	if cfg.Archive.Enabled {
		db, err := archive.Connect(ctx, cfg.Archive.DSN)
		if err != nil {
			logger.Warn("archive disabled", "error", err)
		} else {
			store := archive.NewStore(db, logger)
			if err := store.EnsureSchema(ctx); err != nil {
				logger.Warn("archive disabled", "error", err)
				db.Close()
			} else {
				sinks = append(sinks, store)
				closers = append(closers, db.Close)
			}
		}
	}

	if cfg.Events.Enabled {
		client, err := events.Connect(ctx, cfg.Events.RedisAddr)
		if err != nil {
			logger.Warn("events disabled", "error", err)
		} else {
			publisher := events.NewPublisher(client, cfg.Events.Stream, logger)
			sinks = append(sinks, publisher)
			closers = append(closers, func() { publisher.Close() })
		}
	}

	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}
