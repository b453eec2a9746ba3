package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/maltedev/wheel-catalog-scraper/internal/config"
	"github.com/maltedev/wheel-catalog-scraper/internal/dom"
	"github.com/playwright-community/playwright-go"
)

var ErrNotReady = errors.New("page did not finish loading")

const readyStateScript = `() => document.readyState === "complete"`

// Session is one persistent Chromium context on a throwaway profile directory.
type Session struct {
	pw         *playwright.Playwright
	context    playwright.BrowserContext
	page       playwright.Page
	profileDir string
	opts       *Options
	logger     *slog.Logger
}

type Options struct {
	Headless        bool
	PageLoadTimeout time.Duration
	ViewportWidth   int
	ViewportHeight  int
	CleanupDelay    time.Duration
	ProcessFilter   string
	ProfilePrefix   string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:        false,
		PageLoadTimeout: 30 * time.Second,
		ViewportWidth:   1920,
		ViewportHeight:  1080,
		CleanupDelay:    2 * time.Second,
		ProcessFilter:   "chrome",
		ProfilePrefix:   "wheelscrape-profile-",
	}
}

func OptionsFromConfig(cfg config.BrowserConfig) *Options {
	opts := DefaultOptions()
	opts.Headless = cfg.Headless
	opts.PageLoadTimeout = cfg.PageLoadTimeout
	opts.ViewportWidth = cfg.ViewportWidth
	opts.ViewportHeight = cfg.ViewportHeight
	opts.CleanupDelay = cfg.CleanupDelay
	opts.ProcessFilter = cfg.ProcessFilter
	return opts
}

// Launch creates a fresh profile directory and opens a persistent browser
// context on it. A failed launch removes whatever it already created.
func Launch(opts *Options, logger *slog.Logger) (*Session, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	logger = logger.With("component", "browser")

	profileDir, err := os.MkdirTemp("", opts.ProfilePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	bctx, err := pw.Chromium.LaunchPersistentContext(profileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--start-maximized",
		},
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		pw.Stop()
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else if page, err = bctx.NewPage(); err != nil {
		bctx.Close()
		pw.Stop()
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}
	page.SetDefaultNavigationTimeout(float64(opts.PageLoadTimeout.Milliseconds()))

	logger.Info("browser launched", "profile_dir", profileDir, "headless", opts.Headless)

	return &Session{
		pw:         pw,
		context:    bctx,
		page:       page,
		profileDir: profileDir,
		opts:       opts,
		logger:     logger,
	}, nil
}

// Page exposes the session's single tab through the dom interfaces.
func (s *Session) Page() dom.Page {
	return &Page{page: s.page}
}

func (s *Session) ProfileDir() string {
	return s.profileDir
}

// WaitReady blocks until the document reports readyState "complete".
func (s *Session) WaitReady(timeout time.Duration) error {
	_, err := s.page.WaitForFunction(readyStateScript, nil, playwright.PageWaitForFunctionOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("%w after %s: %v", ErrNotReady, timeout, err)
	}
	return nil
}

// Close shuts the browser context and the playwright driver down. It is safe
// to call more than once.
func (s *Session) Close() error {
	var errs []error

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
		s.context = nil
	}

	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		s.pw = nil
	}

	return errors.Join(errs...)
}
