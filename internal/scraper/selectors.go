package scraper

// Selector chains for the catalog markup. Order matters: the first
// expression with a match wins.
var (
	ProductAnchorSelectors = []string{
		"a[href*='/products/']",
		".product-card a",
		"a.product-item-link",
		"a[href*='/collections/'][href*='/products/']",
	}

	HeadingSelectors = []string{
		"h2.product_details-title",
		`h2[class*="product"]`,
		`h2[class*="details"]`,
		".rte h2",
		"h2",
	}

	SpecSectionSelectors = []string{
		"ul.product_specs-list li",
		"ul li",
	}

	SpecFallbackSelectors = []string{
		".product_specs-list li",
		".product_details-text ul li",
		"ul.product_specs-list li",
		".product_details li",
		".rte ul li",
		`div[class*="spec"] li`,
		`div[class*="product_details"] li`,
	}
)

const (
	overviewSelector = `meta[itemprop="description"]`
	headingWaitFor   = "h2"

	detailsHeading        = "details"
	specificationsHeading = "specifications"

	scrollHeightScript   = `() => document.body.scrollHeight`
	scrollToBottomScript = `() => window.scrollTo(0, document.body.scrollHeight)`
)
