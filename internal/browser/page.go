package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/maltedev/wheel-catalog-scraper/internal/dom"
	"github.com/playwright-community/playwright-go"
)

// Page adapts a live playwright page to dom.Page.
type Page struct {
	page playwright.Page
}

func NewPage(page playwright.Page) *Page {
	return &Page{page: page}
}

func (p *Page) Navigate(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *Page) Evaluate(script string) (any, error) {
	return p.page.Evaluate(script)
}

func (p *Page) WaitFor(selector string, timeout time.Duration) bool {
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err == nil
}

func (p *Page) URL() string {
	return p.page.URL()
}

func (p *Page) QueryAll(selector string) ([]dom.Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrap(handles), nil
}

// Element adapts an element handle to dom.Element.
type Element struct {
	handle playwright.ElementHandle
}

func (e *Element) QueryAll(selector string) ([]dom.Element, error) {
	handles, err := e.handle.QuerySelectorAll(selector)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrap(handles), nil
}

func (e *Element) Text() (string, error) {
	text, err := e.handle.InnerText()
	if err != nil {
		return "", mapErr(err)
	}
	return text, nil
}

// Attribute distinguishes a missing attribute from an empty one, which
// ElementHandle.GetAttribute does not.
func (e *Element) Attribute(name string) (string, bool, error) {
	raw, err := e.handle.Evaluate(`(el, name) => el.getAttribute(name)`, name)
	if err != nil {
		return "", false, mapErr(err)
	}
	value, ok := raw.(string)
	return value, ok, nil
}

func (e *Element) Parent() (dom.Element, error) {
	return e.relative("xpath=..")
}

func (e *Element) NextSibling(tag string) (dom.Element, error) {
	return e.relative("xpath=following-sibling::" + tag + "[1]")
}

func (e *Element) relative(selector string) (dom.Element, error) {
	handle, err := e.handle.QuerySelector(selector)
	if err != nil {
		return nil, mapErr(err)
	}
	if handle == nil {
		return nil, dom.ErrNotFound
	}
	return &Element{handle: handle}, nil
}

func wrap(handles []playwright.ElementHandle) []dom.Element {
	out := make([]dom.Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, &Element{handle: h})
	}
	return out
}

var staleMarkers = []string{
	"not attached to the DOM",
	"Element is not attached",
	"JSHandle is disposed",
	"Execution context was destroyed",
}

// mapErr tags errors caused by a node vanishing with dom.ErrStale.
func mapErr(err error) error {
	msg := err.Error()
	for _, marker := range staleMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", dom.ErrStale, err)
		}
	}
	return err
}
