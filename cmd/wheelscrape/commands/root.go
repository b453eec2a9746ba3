package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maltedev/wheel-catalog-scraper/internal/config"
	"github.com/maltedev/wheel-catalog-scraper/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "wheelscrape",
	Short:         "wheelscrape exports the Method Race Wheels catalog to a spreadsheet.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.Logging.Level = logLevel
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a wheelscrape.yaml config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newLogger writes to console and, when it can be opened, the configured log
// file. The returned func releases the file.
func newLogger(console io.Writer) (*slog.Logger, func()) {
	w, closer, err := logger.Tee(console, cfg.Logging.File)
	log := logger.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, w)
	if err != nil {
		log.Warn("logging to console only", "error", err)
	}
	slog.SetDefault(log)
	return log, func() { closer.Close() }
}
