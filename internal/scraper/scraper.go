// Package scraper discovers product pages on the catalog and extracts their
// fields through the dom interfaces.
package scraper

import (
	"context"

	"github.com/maltedev/wheel-catalog-scraper/internal/dom"
	"github.com/maltedev/wheel-catalog-scraper/internal/models"
)

type Collector interface {
	Collect(ctx context.Context, page dom.Page, categoryURL string) []string
}

type Extractor interface {
	Extract(ctx context.Context, page dom.Page, productURL string) *models.FieldMap
}

var (
	_ Collector = (*LinkCollector)(nil)
	_ Extractor = (*FieldExtractor)(nil)
)
