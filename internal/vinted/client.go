// Package vinted provides a Vinted catalog client abstracted behind
// interfaces for testability.
package vinted

import (
	"context"
	"iter"
	"net/http"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// SearchRequest defines the parameters for one catalog page.
type SearchRequest struct {
	Locale    string
	Query     string
	PriceFrom *float64
	PriceTo   *float64
	Page      int // 1-based
	PerPage   int
}

// SearchResponse holds one page of catalog results.
type SearchResponse struct {
	Items      []CatalogItem
	Page       int
	TotalPages int
	HasMore    bool
}

// Catalog defines the interface for querying the catalog API.
type Catalog interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SessionProvider hands out the cookies the catalog API requires.
type SessionProvider interface {
	Cookies(ctx context.Context, locale string) ([]*http.Cookie, error)
	Invalidate(locale string)
}

// ListingSource produces the listings one rule sees in one locale during a
// cycle. The sequence is lazy: pages are requested as the consumer iterates.
// A non-nil error ends the sequence.
type ListingSource interface {
	Fetch(ctx context.Context, rule *domain.Rule, locale string) iter.Seq2[domain.Listing, error]
}
