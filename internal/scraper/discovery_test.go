package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maltedev/wheel-catalog-scraper/internal/config"
	"github.com/maltedev/wheel-catalog-scraper/internal/ratelimit"
	"github.com/maltedev/wheel-catalog-scraper/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const categoryURL = "https://www.methodracewheels.com/collections/standard-wheels"

// scrollPage serves a static category document and scripted scroll heights.
type scrollPage struct {
	*snapshot.Page

	heights   []any
	reads     int
	scrolls   int
	scrollErr error
}

func (p *scrollPage) Evaluate(script string) (any, error) {
	switch script {
	case scrollHeightScript:
		h := p.heights[min(p.reads, len(p.heights)-1)]
		p.reads++
		return h, nil
	case scrollToBottomScript:
		p.scrolls++
		return nil, p.scrollErr
	}
	return nil, errors.New("unexpected script")
}

func newScrollPage(t *testing.T, html string, heights ...any) *scrollPage {
	t.Helper()
	return &scrollPage{
		Page:    snapshot.NewPage(snapshot.MapLoader(map[string]string{categoryURL: html})),
		heights: heights,
	}
}

func categoryHTML(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "category.html"))
	require.NoError(t, err)
	return string(data)
}

func newTestCollector(maxRounds int) *LinkCollector {
	c := NewLinkCollector(
		config.SiteConfig{ProductMarker: "/products/"},
		config.ScraperConfig{MaxScrollRounds: maxRounds},
		discardLogger(),
	)
	c.pacer = &ratelimit.Recorder{}
	return c
}

func TestCollectStopsWhenHeightSettles(t *testing.T) {
	page := newScrollPage(t, categoryHTML(t), 1000, 2000, 3000, 3000)

	links := newTestCollector(100).Collect(context.Background(), page, categoryURL)

	assert.Equal(t, 3, page.scrolls)
	assert.Equal(t, []string{
		"https://www.methodracewheels.com/products/mr305-nv",
		"https://www.methodracewheels.com/products/mr701",
		"https://www.methodracewheels.com/collections/standard-wheels/products/mr312",
	}, links)
}

func TestCollectSettleWaits(t *testing.T) {
	page := newScrollPage(t, categoryHTML(t), 1000, 2000, 2000)
	c := newTestCollector(100)
	c.cfg.NavigationSettle = 5 * time.Second
	c.cfg.ScrollSettle = 2 * time.Second
	pacer := &ratelimit.Recorder{}
	c.pacer = pacer

	c.Collect(context.Background(), page, categoryURL)

	assert.Equal(t, []time.Duration{5 * time.Second, 2 * time.Second, 2 * time.Second}, pacer.Waits())
}

func TestCollectUnchangedHeightScrollsOnce(t *testing.T) {
	page := newScrollPage(t, categoryHTML(t), 800)

	links := newTestCollector(100).Collect(context.Background(), page, categoryURL)

	assert.Equal(t, 1, page.scrolls)
	assert.Len(t, links, 3)
}

func TestCollectHeightTypes(t *testing.T) {
	page := newScrollPage(t, categoryHTML(t), 100, int64(200), json.Number("300"), 300.0)

	links := newTestCollector(100).Collect(context.Background(), page, categoryURL)

	assert.Equal(t, 3, page.scrolls)
	assert.Len(t, links, 3)
}

func TestCollectRoundLimit(t *testing.T) {
	heights := make([]any, 50)
	for i := range heights {
		heights[i] = (i + 1) * 100
	}
	page := newScrollPage(t, categoryHTML(t), heights...)

	links := newTestCollector(5).Collect(context.Background(), page, categoryURL)

	assert.Equal(t, 5, page.scrolls)
	assert.Len(t, links, 3)
}

func TestCollectAnchorFallbackAndResolution(t *testing.T) {
	html := `
		<div class="product-card"><a href="products/mr-401">MR401</a></div>
		<div class="product-card"><a href="/pages/warranty">Warranty</a></div>`
	page := newScrollPage(t, html, 500)

	links := newTestCollector(100).Collect(context.Background(), page, categoryURL)

	assert.Equal(t, []string{"https://www.methodracewheels.com/collections/products/mr-401"}, links)
}

func TestCollectScrollFailure(t *testing.T) {
	page := newScrollPage(t, categoryHTML(t), 1000, 2000)
	page.scrollErr = errors.New("target closed")

	links := newTestCollector(100).Collect(context.Background(), page, categoryURL)

	assert.NotNil(t, links)
	assert.Empty(t, links)
	assert.Equal(t, 1, page.scrolls)
}

func TestCollectNavigationFailure(t *testing.T) {
	page := &scrollPage{Page: snapshot.NewPage(snapshot.MapLoader(map[string]string{})), heights: []any{1}}

	links := newTestCollector(100).Collect(context.Background(), page, categoryURL)

	assert.NotNil(t, links)
	assert.Empty(t, links)
	assert.Equal(t, 0, page.scrolls)
}

func TestCollectCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	page := newScrollPage(t, categoryHTML(t), 1000, 2000)

	links := newTestCollector(100).Collect(ctx, page, categoryURL)

	assert.Empty(t, links)
	assert.Equal(t, 0, page.scrolls)
}

func TestCollectNoAnchors(t *testing.T) {
	page := newScrollPage(t, `<p>Coming soon</p>`, 10)

	links := newTestCollector(100).Collect(context.Background(), page, categoryURL)
	assert.Empty(t, links)
}
