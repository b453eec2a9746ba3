package scraper

import (
	"strings"

	"github.com/maltedev/wheel-catalog-scraper/internal/dom"
)

// The site's copy contains OCR-style misspellings of the pound unit.
var unitReplacer = strings.NewReplacer(
	"(1bs)", "(lbs)",
	"(Ibs)", "(lbs)",
)

// NormalizeUnits fixes known unit typos. Applying it twice is a no-op.
func NormalizeUnits(s string) string {
	return unitReplacer.Replace(s)
}

func trimmedText(el dom.Element) (string, error) {
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func headingIs(el dom.Element, want string) bool {
	text, err := trimmedText(el)
	if err != nil {
		return false
	}
	return strings.EqualFold(text, want)
}

// spanCount counts span descendants. Two or more spans mark a name/value row.
func spanCount(el dom.Element) (int, error) {
	spans, err := el.QueryAll("span")
	if err != nil {
		return 0, err
	}
	return len(spans), nil
}
