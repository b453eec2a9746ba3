package selector

import (
	"errors"
	"testing"

	"github.com/maltedev/wheel-catalog-scraper/internal/dom"
	"github.com/stretchr/testify/assert"
)

type stubElement struct {
	dom.Element
	name string
}

type stubNode struct {
	results map[string][]dom.Element
	errs    map[string]error
	calls   []string
}

func (n *stubNode) QueryAll(selector string) ([]dom.Element, error) {
	n.calls = append(n.calls, selector)
	if err, ok := n.errs[selector]; ok {
		return nil, err
	}
	return n.results[selector], nil
}

func names(elements []dom.Element) []string {
	var out []string
	for _, el := range elements {
		out = append(out, el.(stubElement).name)
	}
	return out
}

func TestFirst(t *testing.T) {
	tests := []struct {
		name         string
		node         *stubNode
		exprs        []string
		wantSelector string
		wantNames    []string
		wantCalls    []string
	}{
		{
			name: "first expression matches",
			node: &stubNode{results: map[string][]dom.Element{
				"a": {stubElement{name: "a1"}},
				"b": {stubElement{name: "b1"}},
			}},
			exprs:        []string{"a", "b"},
			wantSelector: "a",
			wantNames:    []string{"a1"},
			wantCalls:    []string{"a"},
		},
		{
			name: "falls through empty results",
			node: &stubNode{results: map[string][]dom.Element{
				"b": {stubElement{name: "b1"}, stubElement{name: "b2"}},
				"c": {stubElement{name: "c1"}},
			}},
			exprs:        []string{"a", "b", "c"},
			wantSelector: "b",
			wantNames:    []string{"b1", "b2"},
			wantCalls:    []string{"a", "b"},
		},
		{
			name: "errors are treated as misses",
			node: &stubNode{
				results: map[string][]dom.Element{"ok": {stubElement{name: "ok1"}}},
				errs:    map[string]error{"bad[": errors.New("malformed"), "stale": dom.ErrStale},
			},
			exprs:        []string{"bad[", "stale", "ok"},
			wantSelector: "ok",
			wantNames:    []string{"ok1"},
			wantCalls:    []string{"bad[", "stale", "ok"},
		},
		{
			name:      "nothing matches",
			node:      &stubNode{},
			exprs:     []string{"a", "b"},
			wantCalls: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := First(tt.node, tt.exprs)

			assert.Equal(t, tt.wantSelector, result.Selector)
			assert.Equal(t, tt.wantNames, names(result.Elements))
			assert.Equal(t, len(tt.wantNames) == 0, result.Empty())
			assert.Equal(t, tt.wantCalls, tt.node.calls)
		})
	}
}

func TestFirstNilNode(t *testing.T) {
	result := First(nil, []string{"a"})
	assert.True(t, result.Empty())
}
