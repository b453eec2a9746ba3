package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/maltedev/wheel-catalog-scraper/internal/config"
	"github.com/maltedev/wheel-catalog-scraper/internal/dom"
	"github.com/maltedev/wheel-catalog-scraper/internal/ratelimit"
	"github.com/maltedev/wheel-catalog-scraper/internal/selector"
)

// LinkCollector walks an infinitely scrolling category page and gathers the
// product links it ends up showing.
type LinkCollector struct {
	site   config.SiteConfig
	cfg    config.ScraperConfig
	logger *slog.Logger
	pacer  ratelimit.Pacer
}

func NewLinkCollector(site config.SiteConfig, cfg config.ScraperConfig, logger *slog.Logger) *LinkCollector {
	return &LinkCollector{
		site:   site,
		cfg:    cfg,
		logger: logger.With("component", "link_collector"),
		pacer:  ratelimit.Fixed{},
	}
}

// Collect returns the deduplicated absolute product links found on the
// category page, in first-seen order. Failures end discovery early and are
// logged; whatever was gathered up to that point is returned.
func (c *LinkCollector) Collect(ctx context.Context, page dom.Page, categoryURL string) []string {
	links := []string{}

	c.logger.Info("opening category page", "url", categoryURL)
	if err := page.Navigate(categoryURL); err != nil {
		c.logger.Error("failed to open category page", "url", categoryURL, "error", err)
		return links
	}
	if err := c.pacer.Wait(ctx, c.cfg.NavigationSettle); err != nil {
		c.logger.Warn("discovery canceled", "error", err)
		return links
	}

	rounds, err := c.scrollToEnd(ctx, page)
	if err != nil {
		c.logger.Error("scrolling stopped", "rounds", rounds, "error", err)
		return links
	}
	c.logger.Info("reached end of listing", "rounds", rounds)

	result := selector.First(page, ProductAnchorSelectors)
	if result.Empty() {
		c.logger.Warn("no product anchors matched")
		return links
	}
	c.logger.Debug("found anchors", "selector", result.Selector, "count", len(result.Elements))

	base, err := url.Parse(categoryURL)
	if err != nil {
		c.logger.Error("invalid category url", "url", categoryURL, "error", err)
		return links
	}

	seen := make(map[string]struct{})
	for _, anchor := range result.Elements {
		href, ok, err := anchor.Attribute("href")
		if err != nil || !ok || href == "" {
			continue
		}

		link := resolve(base, href)
		if !strings.Contains(link, c.site.ProductMarker) {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	c.logger.Info("collected product links", "count", len(links))
	return links
}

// scrollToEnd scrolls until the document height stops growing. Hitting the
// round cap ends the loop like convergence does.
func (c *LinkCollector) scrollToEnd(ctx context.Context, page dom.Page) (int, error) {
	last, err := scrollHeight(page)
	if err != nil {
		return 0, err
	}

	rounds := 0
	for {
		if c.cfg.MaxScrollRounds > 0 && rounds >= c.cfg.MaxScrollRounds {
			c.logger.Warn("scroll round limit reached", "limit", c.cfg.MaxScrollRounds)
			return rounds, nil
		}

		if _, err := page.Evaluate(scrollToBottomScript); err != nil {
			return rounds, fmt.Errorf("failed to scroll: %w", err)
		}
		rounds++
		if err := c.pacer.Wait(ctx, c.cfg.ScrollSettle); err != nil {
			return rounds, err
		}

		height, err := scrollHeight(page)
		if err != nil {
			return rounds, err
		}
		c.logger.Debug("scrolled", "round", rounds, "height", height)
		if height == last {
			return rounds, nil
		}
		last = height
	}
}

func scrollHeight(page dom.Page) (float64, error) {
	raw, err := page.Evaluate(scrollHeightScript)
	if err != nil {
		return 0, fmt.Errorf("failed to read scroll height: %w", err)
	}

	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case json.Number:
		return v.Float64()
	default:
		return 0, fmt.Errorf("unexpected scroll height %T", raw)
	}
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
