package engine

import (
	"time"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// SeenLookup is the read side of the state store that classification needs.
type SeenLookup interface {
	Lookup(rule, listingID string) (domain.SeenRecord, bool)
}

// Deduper classifies listings against what a rule has already notified.
// It never writes: records are updated by the caller once delivery is
// confirmed.
type Deduper struct {
	seen    SeenLookup
	epsilon float64
}

// NewDeduper creates a Deduper. A listing only counts as a price drop when
// it is cheaper than the last notified price by more than epsilon.
func NewDeduper(seen SeenLookup, epsilon float64) *Deduper {
	return &Deduper{seen: seen, epsilon: epsilon}
}

// Classify decides whether l is new, a price drop, or a duplicate for rule.
func (d *Deduper) Classify(rule string, l *domain.Listing) domain.Classification {
	rec, ok := d.seen.Lookup(rule, l.ID)
	if !ok {
		return domain.Classification{Kind: domain.MatchNew}
	}
	if l.Price.Amount < rec.LastNotifiedPrice-d.epsilon {
		return domain.Classification{Kind: domain.MatchPriceDrop, OldPrice: rec.LastNotifiedPrice}
	}
	return domain.Classification{Kind: domain.MatchDuplicate}
}

// seenRecord is the state written after c was delivered at the given time.
// The store keeps the original FirstSeen of an existing record.
func seenRecord(c *domain.Candidate, at time.Time) domain.SeenRecord {
	return domain.SeenRecord{
		FirstSeen:         at,
		LastNotifiedAt:    at,
		LastNotifiedPrice: c.Listing.Price.Amount,
		Currency:          c.Listing.Price.Currency,
		Locale:            c.Listing.Locale,
	}
}
