package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/vinted-notifier/internal/store"
	"github.com/donaldgifford/vinted-notifier/pkg/logger"
	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

func TestDeduper_Classify(t *testing.T) {
	t.Parallel()

	seen := store.NewFileStore(t.TempDir()+"/state.json", store.WithLogger(logger.Discard()))
	seen.Upsert("sneakers", "100", domain.SeenRecord{
		FirstSeen:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		LastNotifiedPrice: 80,
	})

	d := NewDeduper(seen, 0.01)

	tests := []struct {
		name    string
		rule    string
		id      string
		price   float64
		want    domain.MatchKind
		wantOld float64
	}{
		{name: "unknown id is new", rule: "sneakers", id: "200", price: 80, want: domain.MatchNew},
		{name: "same id under another rule is new", rule: "boots", id: "100", price: 80, want: domain.MatchNew},
		{name: "same price is duplicate", rule: "sneakers", id: "100", price: 80, want: domain.MatchDuplicate},
		{name: "higher price is duplicate", rule: "sneakers", id: "100", price: 95, want: domain.MatchDuplicate},
		{name: "drop within epsilon is duplicate", rule: "sneakers", id: "100", price: 79.995, want: domain.MatchDuplicate},
		{name: "drop beyond epsilon", rule: "sneakers", id: "100", price: 79.98, want: domain.MatchPriceDrop, wantOld: 80},
		{name: "large drop", rule: "sneakers", id: "100", price: 40, want: domain.MatchPriceDrop, wantOld: 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := domain.Listing{ID: tt.id, Price: domain.Money{Amount: tt.price, Currency: "EUR"}}
			got := d.Classify(tt.rule, &l)
			assert.Equal(t, tt.want, got.Kind)
			assert.InDelta(t, tt.wantOld, got.OldPrice, 0.0001)
		})
	}
}

func TestDeduper_ClassifyDoesNotWrite(t *testing.T) {
	t.Parallel()

	seen := store.NewFileStore(t.TempDir()+"/state.json", store.WithLogger(logger.Discard()))
	d := NewDeduper(seen, 0.01)

	l := domain.Listing{ID: "1", Price: domain.Money{Amount: 10}}
	assert.Equal(t, domain.MatchNew, d.Classify("r", &l).Kind)
	assert.Equal(t, domain.MatchNew, d.Classify("r", &l).Kind)
	assert.Zero(t, seen.Len("r"))
}
