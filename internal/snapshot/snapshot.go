// Package snapshot serves saved product and category pages through the
// dom interfaces so extraction can run without a browser.
package snapshot

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/maltedev/wheel-catalog-scraper/internal/dom"
)

// Loader returns the HTML behind a URL.
type Loader func(target string) (io.ReadCloser, error)

// FileLoader treats targets as local paths or file:// URLs.
func FileLoader(target string) (io.ReadCloser, error) {
	path := target
	if u, err := url.Parse(target); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	return os.Open(path)
}

// MapLoader serves HTML from memory, keyed by URL.
func MapLoader(pages map[string]string) Loader {
	return func(target string) (io.ReadCloser, error) {
		html, ok := pages[target]
		if !ok {
			return nil, fmt.Errorf("no snapshot for %s: %w", target, dom.ErrNotFound)
		}
		return io.NopCloser(strings.NewReader(html)), nil
	}
}

type Page struct {
	load Loader
	url  string
	doc  *goquery.Document
}

func NewPage(load Loader) *Page {
	return &Page{load: load}
}

// FromHTML builds a page that is already showing html.
func FromHTML(html, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Page{url: pageURL, doc: doc}, nil
}

func (p *Page) Navigate(target string) error {
	if p.load == nil {
		return fmt.Errorf("navigate %s: %w", target, dom.ErrUnsupported)
	}

	rc, err := p.load(target)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", target, err)
	}
	defer rc.Close()

	doc, err := goquery.NewDocumentFromReader(rc)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", target, err)
	}

	p.doc = doc
	p.url = target
	return nil
}

// Evaluate is not available on a static document.
func (p *Page) Evaluate(script string) (any, error) {
	return nil, fmt.Errorf("evaluate: %w", dom.ErrUnsupported)
}

// WaitFor reports whether selector matches right now; a snapshot never changes.
func (p *Page) WaitFor(selector string, timeout time.Duration) bool {
	elements, err := p.QueryAll(selector)
	return err == nil && len(elements) > 0
}

func (p *Page) URL() string {
	return p.url
}

func (p *Page) QueryAll(selector string) ([]dom.Element, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("no document loaded: %w", dom.ErrNotFound)
	}
	return queryAll(p.doc.Selection, selector)
}

// queryAll compiles selector up front because goquery panics on invalid input.
func queryAll(scope *goquery.Selection, selector string) ([]dom.Element, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}

	var out []dom.Element
	scope.FindMatcher(matcher).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{sel: s})
	})
	return out, nil
}

// Element wraps a single-node selection.
type Element struct {
	sel *goquery.Selection
}

func (e *Element) QueryAll(selector string) ([]dom.Element, error) {
	return queryAll(e.sel, selector)
}

func (e *Element) Text() (string, error) {
	return e.sel.Text(), nil
}

func (e *Element) Attribute(name string) (string, bool, error) {
	value, ok := e.sel.Attr(name)
	return value, ok, nil
}

func (e *Element) Parent() (dom.Element, error) {
	parent := e.sel.Parent()
	if parent.Length() == 0 {
		return nil, dom.ErrNotFound
	}
	return &Element{sel: parent}, nil
}

func (e *Element) NextSibling(tag string) (dom.Element, error) {
	next := e.sel.NextAllFiltered(tag).First()
	if next.Length() == 0 {
		return nil, dom.ErrNotFound
	}
	return &Element{sel: next}, nil
}
