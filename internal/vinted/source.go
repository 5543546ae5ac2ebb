package vinted

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

const defaultMaxPages = 1

// Source implements ListingSource by paging through a Catalog.
type Source struct {
	catalog  Catalog
	log      *slog.Logger
	perPage  int
	maxPages int
	nowFunc  func() time.Time
}

// SourceOption configures the Source.
type SourceOption func(*Source)

// WithPerPage overrides the default page size.
func WithPerPage(n int) SourceOption {
	return func(s *Source) {
		s.perPage = n
	}
}

// WithMaxPages overrides how many pages one fetch may request.
func WithMaxPages(n int) SourceOption {
	return func(s *Source) {
		s.maxPages = n
	}
}

// WithSourceLogger sets the logger.
func WithSourceLogger(l *slog.Logger) SourceOption {
	return func(s *Source) {
		s.log = l
	}
}

// WithSourceNowFunc overrides the clock used to stamp ObservedAt.
func WithSourceNowFunc(f func() time.Time) SourceOption {
	return func(s *Source) {
		s.nowFunc = f
	}
}

// NewSource creates a listing source over catalog.
func NewSource(catalog Catalog, opts ...SourceOption) *Source {
	s := &Source{
		catalog:  catalog,
		log:      slog.Default(),
		perPage:  defaultPerPage,
		maxPages: defaultMaxPages,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch implements ListingSource. Pages are requested lazily and listings
// are yielded in upstream order. The sequence stops at an empty page, the
// last page, or maxPages, whichever comes first.
func (s *Source) Fetch(ctx context.Context, rule *domain.Rule, locale string) iter.Seq2[domain.Listing, error] {
	return func(yield func(domain.Listing, error) bool) {
		req := SearchRequest{
			Locale:    locale,
			Query:     Query(rule.Keywords),
			PriceFrom: rule.PriceMin,
			PriceTo:   rule.PriceMax,
			PerPage:   s.perPage,
		}

		for page := 1; page <= s.maxPages; page++ {
			req.Page = page

			resp, err := s.catalog.Search(ctx, req)
			if err != nil {
				yield(domain.Listing{}, fmt.Errorf("searching %s page %d: %w", locale, page, err))
				return
			}

			if len(resp.Items) == 0 {
				return
			}

			observed := s.nowFunc().UTC()
			listings := ToListings(resp.Items, locale, observed)
			if dropped := len(resp.Items) - len(listings); dropped > 0 {
				s.log.Debug("dropped items without id or price",
					"rule", rule.Name,
					"locale", locale,
					"page", page,
					"dropped", dropped,
				)
			}
			for _, l := range listings {
				if !yield(l, nil) {
					return
				}
			}

			if !resp.HasMore {
				return
			}
		}

		s.log.Debug("stopped at max pages", "rule", rule.Name, "locale", locale, "max_pages", s.maxPages)
	}
}
