package fetch

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// Detail is what a strategy extracts from a product page. Title may be
// empty; Price is always set on success.
type Detail struct {
	Price float64
	Title string
}

// ExtractFunc pulls a price (and optionally a title) out of a parsed
// document. Returns ErrParse when no price-bearing markup matches.
type ExtractFunc func(doc *goquery.Document) (Detail, error)

// Strategy binds an extraction function to the domains it understands.
type Strategy struct {
	Name    string
	Domains []string
	Extract ExtractFunc
}

// Registry maps URL domains to extraction strategies, with a generic
// fallback for everything else. Adding a site means registering one more
// strategy, nothing else.
type Registry struct {
	strategies []Strategy
	fallback   Strategy
}

// NewRegistry returns the default registry: amazon, ebay, generic fallback.
func NewRegistry() *Registry {
	return &Registry{
		strategies: []Strategy{
			{Name: "amazon", Domains: []string{"amazon."}, Extract: extractAmazon},
			{Name: "ebay", Domains: []string{"ebay."}, Extract: extractEbay},
		},
		fallback: Strategy{Name: "generic", Extract: extractGeneric},
	}
}

// Register adds a site-specific strategy. Later registrations win over the
// fallback but not over earlier matches.
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
}

// ForURL selects the strategy for a product URL by domain substring match,
// falling back to the generic strategy.
func (r *Registry) ForURL(rawURL string) Strategy {
	u, err := url.Parse(rawURL)
	if err != nil {
		return r.fallback
	}
	host := strings.ToLower(u.Hostname())
	for _, s := range r.strategies {
		for _, d := range s.Domains {
			if strings.Contains(host, d) {
				return s
			}
		}
	}
	return r.fallback
}

// Selector chains mirror the markup the respective sites have used; each is
// a fallback for the previous one.
var amazonPriceSelectors = []string{
	".a-price .a-offscreen",
	".a-price-whole",
	"#price_inside_buybox",
	"#priceblock_ourprice",
	".a-price-range .a-offscreen",
}

func extractAmazon(doc *goquery.Document) (Detail, error) {
	detail := Detail{Title: strings.TrimSpace(doc.Find("#productTitle").First().Text())}
	for _, selector := range amazonPriceSelectors {
		if price, ok := firstPrice(doc, selector); ok {
			detail.Price = price
			return detail, nil
		}
	}
	return Detail{}, fmt.Errorf("%w: amazon selectors matched nothing", ErrParse)
}

var ebayPriceSelectors = []string{
	".x-price-primary .ux-textspans",
	".mainPrice .price",
	".notranslate",
	".display-price",
}

func extractEbay(doc *goquery.Document) (Detail, error) {
	detail := Detail{Title: strings.TrimSpace(doc.Find("h1.x-item-title__mainTitle").First().Text())}
	if detail.Title == "" {
		detail.Title = strings.TrimSpace(doc.Find("#x-title-label-lbl").First().Text())
	}
	for _, selector := range ebayPriceSelectors {
		if price, ok := firstPrice(doc, selector); ok {
			detail.Price = price
			return detail, nil
		}
	}
	return Detail{}, fmt.Errorf("%w: ebay selectors matched nothing", ErrParse)
}

// currencyPattern matches a currency symbol followed by an amount, for the
// last-resort sweep over the whole page text.
var currencyPattern = regexp.MustCompile(`[£$€¥₹]\s*[\d,]+(?:\.\d+)?`)

// extractGeneric tries structured price markup first, then elements whose
// class names smell of prices, then a currency-symbol sweep over the text.
func extractGeneric(doc *goquery.Document) (Detail, error) {
	detail := Detail{Title: strings.TrimSpace(doc.Find("h1").First().Text())}

	// itemprop / open-graph product metadata
	if content, ok := doc.Find(`[itemprop="price"]`).First().Attr("content"); ok {
		if price, ok := parsePrice(content); ok {
			detail.Price = price
			return detail, nil
		}
	}
	if content, ok := doc.Find(`meta[property="product:price:amount"]`).First().Attr("content"); ok {
		if price, ok := parsePrice(content); ok {
			detail.Price = price
			return detail, nil
		}
	}

	for _, selector := range []string{
		`[itemprop="price"]`,
		`[class*="price"]`, `[class*="Price"]`,
		`[class*="cost"]`, `[class*="amount"]`,
	} {
		if price, ok := firstPrice(doc, selector); ok {
			detail.Price = price
			return detail, nil
		}
	}

	for _, match := range currencyPattern.FindAllString(doc.Text(), -1) {
		// small matches are usually badges or counts, not prices
		if price, ok := parsePrice(match); ok && price > 1 {
			detail.Price = price
			return detail, nil
		}
	}

	return Detail{}, fmt.Errorf("%w: no price-bearing markup matched", ErrParse)
}

// firstPrice returns the first parseable price among the elements matching
// selector.
func firstPrice(doc *goquery.Document, selector string) (float64, bool) {
	var price float64
	var found bool
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if p, ok := parsePrice(strings.TrimSpace(sel.Text())); ok {
			price, found = p, true
			return false
		}
		return true
	})
	return price, found
}

var nonPriceChars = regexp.MustCompile(`[^\d.,]`)

// parsePrice turns a price string into a number, tolerating currency
// symbols, thousands separators and European decimal commas.
func parsePrice(text string) (float64, bool) {
	cleaned := nonPriceChars.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0, false
	}

	switch {
	case strings.Contains(cleaned, ",") && strings.Contains(cleaned, "."):
		// both present: the comma is a thousands separator
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case strings.Contains(cleaned, ","):
		// "12,99" is a European decimal, "1,299" a thousands group
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			cleaned = parts[0] + "." + parts[1]
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	price := d.InexactFloat64()
	if price <= 0 {
		return 0, false
	}
	return price, true
}
