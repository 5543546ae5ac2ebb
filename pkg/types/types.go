// Package domain defines the core business types for the vinted notifier.
package domain

import (
	"fmt"
	"time"
)

// Platform identifies a webhook-based chat platform.
type Platform string

// Platform constants.
const (
	PlatformSlack   Platform = "slack"
	PlatformDiscord Platform = "discord"
)

// Webhook is a single delivery target.
type Webhook struct {
	Platform Platform `json:"platform" yaml:"platform"`
	URL      string   `json:"url"      yaml:"url"`
}

// Money is an amount in a currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// String formats the amount with two decimals followed by the currency code.
func (m Money) String() string {
	if m.Currency == "" {
		return fmt.Sprintf("%.2f", m.Amount)
	}
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}

// Listing is one marketplace item returned by a catalog search.
type Listing struct {
	ID            string    `json:"id"`
	Locale        string    `json:"locale"`
	Title         string    `json:"title"`
	Price         Money     `json:"price"`
	Size          string    `json:"size,omitempty"`
	Condition     string    `json:"condition,omitempty"`
	Brand         string    `json:"brand,omitempty"`
	SellerRating  *float64  `json:"seller_rating,omitempty"`
	SellerReviews *int      `json:"seller_reviews,omitempty"`
	SellerSales   int       `json:"seller_sales"`
	ThumbnailURL  string    `json:"thumbnail_url,omitempty"`
	URL           string    `json:"url"`
	ObservedAt    time.Time `json:"observed_at"`
}

// Rule is a saved search with its filtering criteria and delivery settings.
// A Rule is built once from configuration and treated as read-only.
type Rule struct {
	Name             string
	Keywords         []string
	IncludeKeywords  []string
	ExcludeKeywords  []string
	PriceMin         *float64
	PriceMax         *float64
	MinSellerRating  *float64
	MinSellerReviews *int
	Locales          []string
	Cooldown         time.Duration
	Webhooks         []Webhook
	Enabled          bool
	Batch            bool
	MaxBatchSize     int
}

// SeenRecord is the per-rule memory of a listing that was notified.
type SeenRecord struct {
	FirstSeen         time.Time `json:"first_seen"`
	LastNotifiedAt    time.Time `json:"last_notified_at"`
	LastNotifiedPrice float64   `json:"last_notified_price"`
	Currency          string    `json:"currency,omitempty"`
	Locale            string    `json:"locale,omitempty"`
}

// MatchKind is the dedup verdict for a listing under a rule.
type MatchKind string

// MatchKind constants.
const (
	MatchNew       MatchKind = "new"
	MatchPriceDrop MatchKind = "price_drop"
	MatchDuplicate MatchKind = "duplicate"
)

// Classification is the result of classifying a listing against prior state.
// OldPrice is only meaningful for MatchPriceDrop.
type Classification struct {
	Kind     MatchKind
	OldPrice float64
}

// Candidate is a filtered listing awaiting cooldown admission and dispatch.
type Candidate struct {
	Listing        Listing
	Classification Classification
}
