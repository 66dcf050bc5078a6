package model

import (
	"math"
	"slices"
)

// Filter is the catalog query
type Filter struct {
	MinPrice   *float64
	MaxPrice   *float64
	TitleQuery string
	GenreIDs   []string
}

// ValidPrice reports whether v is a finite, non-negative amount
func ValidPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Validate rejects a price range whose bounds are inverted, negative or not finite
func (f Filter) Validate() error {
	if f.MinPrice != nil && !ValidPrice(*f.MinPrice) {
		return ErrInvalidPrice
	}
	if f.MaxPrice != nil && !ValidPrice(*f.MaxPrice) {
		return ErrInvalidPrice
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return ErrInvalidPriceRange
	}
	return nil
}

// HasPrice reports whether any price bound is set
func (f Filter) HasPrice() bool {
	return f.MinPrice != nil || f.MaxPrice != nil
}

// IsZero reports whether no criterion is set
func (f Filter) IsZero() bool {
	return !f.HasPrice() && f.TitleQuery == "" && len(f.GenreIDs) == 0
}

// Clone returns a copy that shares no memory with f
func (f Filter) Clone() Filter {
	out := Filter{TitleQuery: f.TitleQuery, GenreIDs: slices.Clone(f.GenreIDs)}
	if f.MinPrice != nil {
		v := *f.MinPrice
		out.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := *f.MaxPrice
		out.MaxPrice = &v
	}
	return out
}
