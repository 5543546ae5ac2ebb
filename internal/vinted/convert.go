package vinted

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// ToListings converts catalog items into domain listings stamped with
// observedAt. Items without an id or a usable price are dropped.
func ToListings(items []CatalogItem, locale string, observedAt time.Time) []domain.Listing {
	listings := make([]domain.Listing, 0, len(items))
	for i := range items {
		if l, ok := toListing(&items[i], locale, observedAt); ok {
			listings = append(listings, l)
		}
	}
	return listings
}

func toListing(item *CatalogItem, locale string, observedAt time.Time) (domain.Listing, bool) {
	id := item.ID.String()
	if id == "" {
		return domain.Listing{}, false
	}
	// A listing without a price would read as a drop to zero.
	price, ok := parsePrice(item.Price, item.Currency)
	if !ok {
		return domain.Listing{}, false
	}

	l := domain.Listing{
		ID:         id,
		Locale:     locale,
		Title:      strings.TrimSpace(item.Title),
		Price:      price,
		Size:       item.SizeTitle,
		Condition:  item.Status,
		Brand:      item.BrandTitle,
		URL:        itemURL(item, locale),
		ObservedAt: observedAt,
	}

	// Image
	if item.Photo != nil {
		l.ThumbnailURL = thumbnail(item.Photo)
	}

	// Seller
	if item.User != nil {
		if item.User.FeedbackReputation != nil {
			// Reputation is a 0..1 fraction; rules use a 0..5 star scale.
			rating := *item.User.FeedbackReputation * 5
			l.SellerRating = &rating
		}
		if item.User.FeedbackCount != nil {
			reviews := *item.User.FeedbackCount
			l.SellerReviews = &reviews
		}
		l.SellerSales = item.User.GivenItemCount
	}

	return l, true
}

// parsePrice reads the structured price object, the legacy string price or
// a bare number. It reports false when no non-negative amount can be read.
func parsePrice(raw json.RawMessage, legacyCurrency string) (domain.Money, bool) {
	m := domain.Money{Currency: legacyCurrency}
	if len(raw) == 0 || string(raw) == "null" {
		return m, false
	}

	var amount string
	var structured CatalogPrice
	var legacy string
	var number float64
	switch {
	case json.Unmarshal(raw, &structured) == nil:
		amount = structured.Amount
		if structured.CurrencyCode != "" {
			m.Currency = structured.CurrencyCode
		}
	case json.Unmarshal(raw, &legacy) == nil:
		amount = legacy
	case json.Unmarshal(raw, &number) == nil:
		amount = strconv.FormatFloat(number, 'f', -1, 64)
	default:
		return m, false
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return m, false
	}
	m.Amount = v
	return m, true
}

func thumbnail(p *CatalogPhoto) string {
	for _, t := range p.Thumbnails {
		if t.Type == "thumb310x430" && t.URL != "" {
			return t.URL
		}
	}
	return p.URL
}

func itemURL(item *CatalogItem, locale string) string {
	if item.URL != "" {
		return item.URL
	}
	if item.Path != "" {
		return BaseURL(locale) + item.Path
	}
	return BaseURL(locale) + "/items/" + item.ID.String()
}
