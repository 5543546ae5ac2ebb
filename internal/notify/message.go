// Package notify formats matched listings into chat messages and delivers
// them to Slack and Discord webhooks.
package notify

import (
	"fmt"
	"slices"
	"strings"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// Item is one listing inside a message.
type Item struct {
	ID           string
	Title        string
	URL          string
	ThumbnailURL string
	Locale       string
	Price        domain.Money
	OldPrice     *float64 // set for price drops
	Size         string
	Condition    string
	Brand        string
	SellerRating *float64
	Kind         domain.MatchKind
}

// Message is the platform-agnostic notification model. A message with one
// item renders as a rich single-listing alert; several items render as a
// digest.
type Message struct {
	Rule    string
	Locales []string
	Items   []Item
}

// NewMessage builds a message for a rule from admitted candidates.
func NewMessage(rule string, candidates []domain.Candidate) *Message {
	m := &Message{Rule: rule, Items: make([]Item, 0, len(candidates))}
	for i := range candidates {
		c := &candidates[i]
		l := &c.Listing
		it := Item{
			ID:           l.ID,
			Title:        l.Title,
			URL:          l.URL,
			ThumbnailURL: l.ThumbnailURL,
			Locale:       l.Locale,
			Price:        l.Price,
			Size:         l.Size,
			Condition:    l.Condition,
			Brand:        l.Brand,
			SellerRating: l.SellerRating,
			Kind:         c.Classification.Kind,
		}
		if c.Classification.Kind == domain.MatchPriceDrop {
			old := c.Classification.OldPrice
			it.OldPrice = &old
		}
		m.Items = append(m.Items, it)
		if l.Locale != "" && !slices.Contains(m.Locales, l.Locale) {
			m.Locales = append(m.Locales, l.Locale)
		}
	}
	return m
}

// IsDigest reports whether the message carries more than one listing.
func (m *Message) IsDigest() bool {
	return len(m.Items) > 1
}

// AveragePrice returns the mean price of the items in the currency of the
// first item.
func (m *Message) AveragePrice() domain.Money {
	if len(m.Items) == 0 {
		return domain.Money{}
	}
	var total float64
	for i := range m.Items {
		total += m.Items[i].Price.Amount
	}
	return domain.Money{
		Amount:   total / float64(len(m.Items)),
		Currency: m.Items[0].Price.Currency,
	}
}

// Headline is the one-line summary shared by every platform.
func (m *Message) Headline() string {
	scope := m.Rule
	if len(m.Locales) > 0 {
		scope = fmt.Sprintf("%s (%s)", m.Rule, strings.Join(m.Locales, ", "))
	}

	if !m.IsDigest() {
		if len(m.Items) == 1 && m.Items[0].Kind == domain.MatchPriceDrop {
			return "Price drop: " + scope
		}
		return "New: " + scope
	}

	drops := 0
	for i := range m.Items {
		if m.Items[i].Kind == domain.MatchPriceDrop {
			drops++
		}
	}
	fresh := len(m.Items) - drops
	switch drops {
	case 0:
		return fmt.Sprintf("%s: %s", count(fresh, "new listing"), scope)
	case len(m.Items):
		return fmt.Sprintf("%s: %s", count(drops, "price drop"), scope)
	default:
		return fmt.Sprintf("%s and %s: %s", count(fresh, "new listing"), count(drops, "price drop"), scope)
	}
}

// count renders n with noun, adding an s unless n is one.
func count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Summary is the digest footer line.
func (m *Message) Summary() string {
	return fmt.Sprintf("Total: %d items | Avg price: %s", len(m.Items), m.AveragePrice())
}

// details lists the optional attributes of an item, each formatted by label.
func (it *Item) details(label func(name, value string) string) []string {
	price := it.Price.String()
	if it.OldPrice != nil {
		price = fmt.Sprintf("%s (was %.2f)", price, *it.OldPrice)
	}
	out := []string{label("Price", price)}
	if it.Size != "" {
		out = append(out, label("Size", it.Size))
	}
	if it.Brand != "" {
		out = append(out, label("Brand", it.Brand))
	}
	if it.Condition != "" {
		out = append(out, label("Condition", it.Condition))
	}
	if it.SellerRating != nil {
		out = append(out, label("Seller Rating", fmt.Sprintf("%.1f⭐", *it.SellerRating)))
	}
	return out
}
