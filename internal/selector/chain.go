// Package selector implements the ordered fallback lookup used by every
// extraction step: the first expression that matches anything wins.
package selector

import (
	"github.com/maltedev/wheel-catalog-scraper/internal/dom"
)

type Result struct {
	Elements []dom.Element
	// Selector is the expression that produced Elements, empty on a miss.
	Selector string
}

func (r Result) Empty() bool {
	return len(r.Elements) == 0
}

// First evaluates exprs in order against node and returns the matches of the
// first expression yielding at least one element. A failing expression counts
// as a miss.
func First(node dom.Node, exprs []string) Result {
	if node == nil {
		return Result{}
	}

	for _, expr := range exprs {
		elements, err := node.QueryAll(expr)
		if err != nil || len(elements) == 0 {
			continue
		}
		return Result{Elements: elements, Selector: expr}
	}

	return Result{}
}
