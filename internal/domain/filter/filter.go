// Package filter computes the visible product subset from catalog state and
// the current criteria. Everything here is pure: the same inputs always
// produce the same ordered output.
package filter

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/parvej/showcase/internal/domain/catalog"
)

// Default price range bounds when no explicit range is selected.
var (
	DefaultPriceMin = decimal.Zero
	DefaultPriceMax = decimal.NewFromInt(10000)
)

// Criteria holds the ephemeral search/filter selections. It is session
// state, never persisted.
type Criteria struct {
	SearchText        string
	SelectedTags      map[string]struct{}
	SelectedShopNames map[string]struct{}
	PriceMin          decimal.Decimal
	PriceMax          decimal.Decimal
}

// Default returns criteria that match every product.
func Default() Criteria {
	return Criteria{
		SelectedTags:      map[string]struct{}{},
		SelectedShopNames: map[string]struct{}{},
		PriceMin:          DefaultPriceMin,
		PriceMax:          DefaultPriceMax,
	}
}

// Active reports whether the filtered product view should be shown directly
// instead of the collection-grouped view: true iff any criterion deviates
// from the default.
func (c Criteria) Active() bool {
	return c.SearchText != "" ||
		len(c.SelectedTags) > 0 ||
		len(c.SelectedShopNames) > 0 ||
		!c.PriceMin.Equal(DefaultPriceMin) ||
		!c.PriceMax.Equal(DefaultPriceMax)
}

// Matches reports whether a single product passes every criterion. The four
// categories combine with AND; within the tag set, membership of any one
// selected tag suffices.
func (c Criteria) Matches(p catalog.Product) bool {
	return c.matchesSearch(p) && c.matchesTags(p) && c.matchesShop(p) && c.matchesPrice(p)
}

func (c Criteria) matchesSearch(p catalog.Product) bool {
	if c.SearchText == "" {
		return true
	}
	needle := strings.ToLower(c.SearchText)
	if strings.Contains(strings.ToLower(p.Title), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return p.ShopName != "" && strings.Contains(strings.ToLower(p.ShopName), needle)
}

func (c Criteria) matchesTags(p catalog.Product) bool {
	if len(c.SelectedTags) == 0 {
		return true
	}
	for _, tag := range p.Tags {
		if _, ok := c.SelectedTags[tag]; ok {
			return true
		}
	}
	return false
}

func (c Criteria) matchesShop(p catalog.Product) bool {
	if len(c.SelectedShopNames) == 0 {
		return true
	}
	_, ok := c.SelectedShopNames[p.ShopName]
	return ok
}

func (c Criteria) matchesPrice(p catalog.Product) bool {
	return p.Price.GreaterThanOrEqual(c.PriceMin) && p.Price.LessThanOrEqual(c.PriceMax)
}

// Visible returns the products passing the criteria, preserving the input's
// relative order. The filter is stable and never re-sorts.
func Visible(products []catalog.Product, c Criteria) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// AllTags returns every distinct tag across all products of all collections,
// sorted for a stable presentation order.
func AllTags(productsByCollection map[string][]catalog.Product) []string {
	seen := map[string]struct{}{}
	for _, products := range productsByCollection {
		for _, p := range products {
			for _, tag := range p.Tags {
				seen[tag] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SplitPinned partitions collections by the pinned flag, each half keeping
// its original relative order.
func SplitPinned(collections []catalog.Collection) (pinned, others []catalog.Collection) {
	for _, c := range collections {
		if c.Pinned {
			pinned = append(pinned, c)
		} else {
			others = append(others, c)
		}
	}
	return pinned, others
}
