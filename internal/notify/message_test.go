package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func candidate(id, locale string, price float64, kind domain.MatchKind) domain.Candidate {
	c := domain.Candidate{
		Listing: domain.Listing{
			ID:           id,
			Locale:       locale,
			Title:        "Nike Air Max " + id,
			Price:        domain.Money{Amount: price, Currency: "EUR"},
			Size:         "42",
			Condition:    "Very good",
			Brand:        "Nike",
			SellerRating: ptr(4.8),
			ThumbnailURL: "https://images.vinted.net/" + id + ".jpg",
			URL:          "https://www.vinted.fr/items/" + id,
			ObservedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Classification: domain.Classification{Kind: kind},
	}
	if kind == domain.MatchPriceDrop {
		c.Classification.OldPrice = price + 10
	}
	return c
}

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg := NewMessage("sneakers", []domain.Candidate{
		candidate("1", "fr", 40, domain.MatchNew),
		candidate("2", "de", 30, domain.MatchPriceDrop),
		candidate("3", "fr", 20, domain.MatchNew),
	})

	assert.Equal(t, "sneakers", msg.Rule)
	assert.Equal(t, []string{"fr", "de"}, msg.Locales)
	require.Len(t, msg.Items, 3)
	assert.Nil(t, msg.Items[0].OldPrice)
	require.NotNil(t, msg.Items[1].OldPrice)
	assert.InDelta(t, 40.0, *msg.Items[1].OldPrice, 0.001)
	assert.True(t, msg.IsDigest())
	assert.Equal(t, domain.Money{Amount: 30, Currency: "EUR"}, msg.AveragePrice())
	assert.Equal(t, "Total: 3 items | Avg price: 30.00 EUR", msg.Summary())
}

func TestMessage_Headline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kinds []domain.MatchKind
		want  string
	}{
		{
			name:  "single new listing",
			kinds: []domain.MatchKind{domain.MatchNew},
			want:  "New: sneakers (fr)",
		},
		{
			name:  "single price drop",
			kinds: []domain.MatchKind{domain.MatchPriceDrop},
			want:  "Price drop: sneakers (fr)",
		},
		{
			name:  "digest of new listings",
			kinds: []domain.MatchKind{domain.MatchNew, domain.MatchNew},
			want:  "2 new listings: sneakers (fr)",
		},
		{
			name:  "digest of price drops",
			kinds: []domain.MatchKind{domain.MatchPriceDrop, domain.MatchPriceDrop, domain.MatchPriceDrop},
			want:  "3 price drops: sneakers (fr)",
		},
		{
			name:  "mixed digest",
			kinds: []domain.MatchKind{domain.MatchNew, domain.MatchPriceDrop, domain.MatchNew},
			want:  "2 new listings and 1 price drop: sneakers (fr)",
		},
		{
			name:  "mixed digest with one new listing",
			kinds: []domain.MatchKind{domain.MatchPriceDrop, domain.MatchNew, domain.MatchPriceDrop},
			want:  "1 new listing and 2 price drops: sneakers (fr)",
		},
		{
			name:  "mixed digest of one each",
			kinds: []domain.MatchKind{domain.MatchNew, domain.MatchPriceDrop},
			want:  "1 new listing and 1 price drop: sneakers (fr)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cs := make([]domain.Candidate, 0, len(tt.kinds))
			for i, k := range tt.kinds {
				cs = append(cs, candidate(string(rune('a'+i)), "fr", 25, k))
			}
			assert.Equal(t, tt.want, NewMessage("sneakers", cs).Headline())
		})
	}
}

func TestItem_Details(t *testing.T) {
	t.Parallel()

	label := func(name, value string) string { return name + "=" + value }

	full := NewMessage("r", []domain.Candidate{candidate("9", "fr", 15, domain.MatchPriceDrop)}).Items[0]
	assert.Equal(t, []string{
		"Price=15.00 EUR (was 25.00)",
		"Size=42",
		"Brand=Nike",
		"Condition=Very good",
		"Seller Rating=4.8⭐",
	}, full.details(label))

	bare := Item{Price: domain.Money{Amount: 5, Currency: "PLN"}}
	assert.Equal(t, []string{"Price=5.00 PLN"}, bare.details(label))
}
