package scraper

import (
	"context"
	"log/slog"

	"github.com/maltedev/wheel-catalog-scraper/internal/config"
	"github.com/maltedev/wheel-catalog-scraper/internal/dom"
	"github.com/maltedev/wheel-catalog-scraper/internal/models"
	"github.com/maltedev/wheel-catalog-scraper/internal/ratelimit"
	"github.com/maltedev/wheel-catalog-scraper/internal/selector"
)

// Spec is one name/value row of the specifications list.
type Spec struct {
	Name  string
	Value string
}

// FieldExtractor turns a product page into a field map.
type FieldExtractor struct {
	cfg    config.ScraperConfig
	logger *slog.Logger
	pacer  ratelimit.Pacer
}

func NewFieldExtractor(cfg config.ScraperConfig, logger *slog.Logger) *FieldExtractor {
	return &FieldExtractor{
		cfg:    cfg,
		logger: logger.With("component", "field_extractor"),
		pacer:  ratelimit.Fixed{},
	}
}

// Extract opens productURL and extracts its fields. It never fails: a page
// that cannot be opened yields an empty map.
func (e *FieldExtractor) Extract(ctx context.Context, page dom.Page, productURL string) *models.FieldMap {
	if ctx.Err() != nil {
		return models.NewFieldMap()
	}

	if err := page.Navigate(productURL); err != nil {
		e.logger.Error("failed to open product page", "url", productURL, "error", err)
		return models.NewFieldMap()
	}
	if err := e.pacer.Wait(ctx, e.cfg.NavigationSettle); err != nil {
		return models.NewFieldMap()
	}

	return e.Parse(page)
}

// Parse extracts fields from the document page currently shows. Each step is
// best-effort; earlier steps win when two produce the same key.
func (e *FieldExtractor) Parse(page dom.Page) (fields *models.FieldMap) {
	logger := e.logger.With("url", page.URL())

	defer func() {
		if r := recover(); r != nil {
			logger.Error("extraction aborted", "panic", r)
			fields = models.NewFieldMap()
		}
	}()

	raw := models.NewFieldMap()
	raw.SetIfAbsent(models.OverviewKey, overview(page))

	if !page.WaitFor(headingWaitFor, e.cfg.ElementWait) {
		logger.Debug("no headings appeared", "timeout", e.cfg.ElementWait)
	}
	headings := selector.First(page, HeadingSelectors)
	if !headings.Empty() {
		logger.Debug("found headings", "selector", headings.Selector, "count", len(headings.Elements))
	}

	for i, bullet := range e.bullets(headings.Elements) {
		raw.SetIfAbsent(models.BulletKey(i+1), bullet)
	}

	for _, spec := range e.specifications(page, headings.Elements) {
		raw.SetIfAbsent(spec.Name, spec.Value)
	}

	logger.Info("extracted product", "fields", raw.Len())
	return raw.Ordered()
}

func overview(page dom.Page) string {
	result := selector.First(page, []string{overviewSelector})
	if result.Empty() {
		return ""
	}
	content, ok, err := result.Elements[0].Attribute("content")
	if err != nil || !ok {
		return ""
	}
	return content
}

// bullets returns the free-text items listed under the first "Details"
// heading that yields any.
func (e *FieldExtractor) bullets(headings []dom.Element) []string {
	for _, heading := range headings {
		if !headingIs(heading, detailsHeading) {
			continue
		}

		var accepted []string
		for _, item := range detailItems(heading) {
			text, err := trimmedText(item)
			if err != nil || text == "" {
				continue
			}
			spans, err := spanCount(item)
			if err != nil || spans >= 2 {
				continue
			}
			accepted = append(accepted, NormalizeUnits(text))
		}

		if len(accepted) > 0 {
			return accepted
		}
	}
	return nil
}

// detailItems runs the structural searches around a details heading and
// returns the first non-empty result.
func detailItems(heading dom.Element) []dom.Element {
	searches := []func() ([]dom.Element, error){
		func() ([]dom.Element, error) {
			parent, err := heading.Parent()
			if err != nil {
				return nil, err
			}
			return parent.QueryAll("ul li")
		},
		func() ([]dom.Element, error) {
			sibling, err := heading.NextSibling("div")
			if err != nil {
				return nil, err
			}
			return sibling.QueryAll("li")
		},
		func() ([]dom.Element, error) {
			parent, err := heading.Parent()
			if err != nil {
				return nil, err
			}
			grandparent, err := parent.Parent()
			if err != nil {
				return nil, err
			}
			return grandparent.QueryAll("ul li")
		},
	}

	for _, search := range searches {
		items, err := search()
		if err == nil && len(items) > 0 {
			return items
		}
	}
	return nil
}

// specifications reads name/value rows from the section under the
// "Specifications" heading, falling back to page-wide list selectors.
func (e *FieldExtractor) specifications(page dom.Page, headings []dom.Element) []Spec {
	var items []dom.Element
	for _, heading := range headings {
		if !headingIs(heading, specificationsHeading) {
			continue
		}
		if parent, err := heading.Parent(); err == nil {
			items = selector.First(parent, SpecSectionSelectors).Elements
		}
		break
	}

	if len(items) == 0 {
		result := selector.First(page, SpecFallbackSelectors)
		if !result.Empty() {
			e.logger.Debug("using fallback spec selector", "selector", result.Selector)
		}
		items = result.Elements
	}

	var specs []Spec
	for _, item := range items {
		spans, err := item.QueryAll("span")
		if err != nil || len(spans) < 2 {
			continue
		}
		name, err := trimmedText(spans[0])
		if err != nil || name == "" {
			continue
		}
		value, err := trimmedText(spans[1])
		if err != nil || value == "" {
			continue
		}
		specs = append(specs, Spec{Name: NormalizeUnits(name), Value: value})
	}
	return specs
}
