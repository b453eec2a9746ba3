package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "WHEELSCRAPE"

type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Browser BrowserConfig `mapstructure:"browser"`
	Export  ExportConfig  `mapstructure:"export"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Events  EventsConfig  `mapstructure:"events"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type SiteConfig struct {
	HomeURL       string `mapstructure:"home_url"`
	CategoryURL   string `mapstructure:"category_url"`
	ProductMarker string `mapstructure:"product_marker"`
}

type ScraperConfig struct {
	NavigationSettle time.Duration `mapstructure:"navigation_settle"`
	ScrollSettle     time.Duration `mapstructure:"scroll_settle"`
	ElementWait      time.Duration `mapstructure:"element_wait"`
	MaxScrollRounds  int           `mapstructure:"max_scroll_rounds"`
}

type BrowserConfig struct {
	Headless        bool          `mapstructure:"headless"`
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`
	PageReadyWait   time.Duration `mapstructure:"page_ready_wait"`
	ChallengeWait   time.Duration `mapstructure:"challenge_wait"`
	CleanupDelay    time.Duration `mapstructure:"cleanup_delay"`
	ProcessFilter   string        `mapstructure:"process_filter"`
	ViewportWidth   int           `mapstructure:"viewport_width"`
	ViewportHeight  int           `mapstructure:"viewport_height"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// ArchiveConfig enables the Postgres run archive.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// EventsConfig enables the Redis stream notification.
type EventsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	RedisAddr string `mapstructure:"redis_addr"`
	Stream    string `mapstructure:"stream"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads defaults, an optional wheelscrape.yaml and WHEELSCRAPE_*
// environment overrides. A non-empty path selects the config file explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wheelscrape")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.home_url", "https://www.methodracewheels.com/")
	v.SetDefault("site.category_url", "https://www.methodracewheels.com/collections/standard-wheels")
	v.SetDefault("site.product_marker", "/products/")

	v.SetDefault("scraper.navigation_settle", 5*time.Second)
	v.SetDefault("scraper.scroll_settle", 2*time.Second)
	v.SetDefault("scraper.element_wait", 50*time.Second)
	v.SetDefault("scraper.max_scroll_rounds", 100)

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.page_load_timeout", 30*time.Second)
	v.SetDefault("browser.page_ready_wait", 50*time.Second)
	v.SetDefault("browser.challenge_wait", 500*time.Second)
	v.SetDefault("browser.cleanup_delay", 2*time.Second)
	v.SetDefault("browser.process_filter", "chrome")
	v.SetDefault("browser.viewport_width", 1920)
	v.SetDefault("browser.viewport_height", 1080)

	v.SetDefault("export.dir", defaultExportDir())

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.dsn", "")

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.redis_addr", "localhost:6379")
	v.SetDefault("events.stream", "wheelscrape:events")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "methodracewheels_automation.log")
}

func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Desktop")
}

func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"site.home_url":     c.Site.HomeURL,
		"site.category_url": c.Site.CategoryURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}

	if c.Site.ProductMarker == "" {
		return fmt.Errorf("site.product_marker must not be empty")
	}

	if c.Browser.PageLoadTimeout <= 0 || c.Browser.PageReadyWait <= 0 || c.Scraper.ElementWait <= 0 {
		return fmt.Errorf("browser and element wait timeouts must be positive")
	}

	if c.Scraper.NavigationSettle < 0 || c.Scraper.ScrollSettle < 0 || c.Browser.CleanupDelay < 0 {
		return fmt.Errorf("settle delays cannot be negative")
	}

	if c.Scraper.MaxScrollRounds < 1 {
		return fmt.Errorf("scraper.max_scroll_rounds must be at least 1")
	}

	if c.Export.Dir == "" {
		return fmt.Errorf("export.dir must not be empty")
	}

	if c.Archive.Enabled && c.Archive.DSN == "" {
		return fmt.Errorf("archive.dsn is required when the archive is enabled (set WHEELSCRAPE_ARCHIVE_DSN)")
	}

	if c.Events.Enabled && (c.Events.RedisAddr == "" || c.Events.Stream == "") {
		return fmt.Errorf("events.redis_addr and events.stream are required when events are enabled")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be 'text' or 'json', got: %s", c.Logging.Format)
	}

	return nil
}
