package catalog

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"shopverse/internal/domain"
)

// SortMode determines the ordering of the filtered catalog
type SortMode string

const (
	SortFeatured  SortMode = "featured"
	SortNewest    SortMode = "newest"
	SortPriceLow  SortMode = "price-low"
	SortPriceHigh SortMode = "price-high"
)

// FilterConfig is the active view configuration for the shop listing.
// It is derived from URL query parameters and treated as an opaque value
// by Apply; nothing in this package stores it.
type FilterConfig struct {
	Query        string
	Category     string
	PriceMin     float64
	PriceMax     float64
	FeaturedOnly bool
	Sort         SortMode
}

// DefaultFilterConfig returns a configuration that passes every product
// through unchanged apart from the default featured-first ordering.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		PriceMax: math.MaxFloat64,
		Sort:     SortFeatured,
	}
}

// ParseFilterConfig maps URL query parameters onto a FilterConfig.
// Unknown or malformed values degrade to permissive no-ops rather than
// producing an error; missing price bounds leave the range open.
func ParseFilterConfig(params url.Values) FilterConfig {
	cfg := DefaultFilterConfig()

	cfg.Query = strings.TrimSpace(params.Get("search"))
	cfg.Category = strings.TrimSpace(params.Get("category"))
	cfg.FeaturedOnly = params.Get("featured") == "true"

	if raw := params.Get("min_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
			cfg.PriceMin = v
		}
	}
	if raw := params.Get("max_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
			cfg.PriceMax = v
		}
	}

	if raw := params.Get("sort"); raw != "" {
		cfg.Sort = SortMode(raw)
	}

	return cfg
}

// QueryValues maps the configuration back onto URL query parameters,
// omitting anything still at its default so URLs stay minimal.
func (c FilterConfig) QueryValues() url.Values {
	params := url.Values{}

	if c.Query != "" {
		params.Set("search", c.Query)
	}
	if c.Category != "" {
		params.Set("category", c.Category)
	}
	if c.PriceMin > 0 {
		params.Set("min_price", strconv.FormatFloat(c.PriceMin, 'f', -1, 64))
	}
	if c.PriceMax != math.MaxFloat64 {
		params.Set("max_price", strconv.FormatFloat(c.PriceMax, 'f', -1, 64))
	}
	if c.FeaturedOnly {
		params.Set("featured", "true")
	}
	if c.Sort != "" {
		params.Set("sort", string(c.Sort))
	}

	return params
}

// Apply derives the visible product subset and its order from a full
// catalog snapshot. It is a pure function: the input slice is never
// mutated, and identical inputs always yield identical output. An empty
// query or category passes every product through; a price range with
// min > max matches nothing. Sorting is stable so ties keep their
// relative input order between re-renders; an unrecognized sort mode
// falls back to input order.
func Apply(products []domain.Product, cfg FilterConfig) []domain.Product {
	result := make([]domain.Product, 0, len(products))

	query := strings.ToLower(cfg.Query)
	for _, p := range products {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		if cfg.Category != "" && p.Category != cfg.Category {
			continue
		}
		if p.Price < cfg.PriceMin || p.Price > cfg.PriceMax {
			continue
		}
		if cfg.FeaturedOnly && !p.Featured {
			continue
		}
		result = append(result, p)
	}

	switch cfg.Sort {
	case SortPriceLow:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price < result[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price > result[j].Price
		})
	case SortNewest:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	case SortFeatured:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Featured && !result[j].Featured
		})
	}

	return result
}
