// Package dom describes the small slice of a rendered document that the
// extraction code depends on. Two implementations exist: a live browser page
// (internal/browser) and a static HTML snapshot (internal/snapshot).
package dom

import (
	"errors"
	"time"
)

var (
	ErrStale       = errors.New("element is no longer attached to the document")
	ErrNotFound    = errors.New("element not found")
	ErrUnsupported = errors.New("operation not supported by this document")
)

// Node is anything that can be queried with a CSS selector.
type Node interface {
	QueryAll(selector string) ([]Element, error)
}

type Element interface {
	Node

	// Text returns the rendered text of the element, untrimmed.
	Text() (string, error)

	// Attribute reports the attribute value and whether it was present.
	Attribute(name string) (string, bool, error)

	// Parent returns the parent element or ErrNotFound.
	Parent() (Element, error)

	// NextSibling returns the first following sibling with the given tag
	// name or ErrNotFound.
	NextSibling(tag string) (Element, error)
}

type Page interface {
	Node

	Navigate(url string) error
	Evaluate(script string) (any, error)

	// WaitFor blocks until selector matches or timeout elapses. Expiry is
	// reported as false, never as an error.
	WaitFor(selector string, timeout time.Duration) bool

	URL() string
}
