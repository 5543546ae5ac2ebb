// Package filter decides whether a listing satisfies a rule's criteria.
package filter

import (
	"fmt"
	"strings"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// Stage names the check that rejected a listing.
type Stage string

// Stages in evaluation order.
const (
	StageEnabled       Stage = "enabled"
	StagePrice         Stage = "price"
	StageKeywords      Stage = "keywords"
	StageInclude       Stage = "include_keywords"
	StageExclude       Stage = "exclude_keywords"
	StageSellerRating  Stage = "seller_rating"
	StageSellerReviews Stage = "seller_reviews"
)

// Result is the outcome of evaluating a listing. Stage and Reason are empty
// when the listing passed.
type Result struct {
	Passed bool
	Stage  Stage
	Reason string
}

func pass() Result { return Result{Passed: true} }

func fail(stage Stage, format string, args ...any) Result {
	return Result{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

// Matches reports whether the listing passes every check of the rule.
func Matches(rule *domain.Rule, l *domain.Listing) bool {
	return Evaluate(rule, l).Passed
}

// Evaluate runs the checks in a fixed order and stops at the first failure.
func Evaluate(rule *domain.Rule, l *domain.Listing) Result {
	checks := []func(*domain.Rule, *domain.Listing) Result{
		checkEnabled,
		checkPrice,
		checkKeywords,
		checkInclude,
		checkExclude,
		checkSellerRating,
		checkSellerReviews,
	}
	for _, check := range checks {
		if r := check(rule, l); !r.Passed {
			return r
		}
	}
	return pass()
}

func checkEnabled(rule *domain.Rule, _ *domain.Listing) Result {
	if !rule.Enabled {
		return fail(StageEnabled, "rule %q is disabled", rule.Name)
	}
	return pass()
}

// Bounds are inclusive.
func checkPrice(rule *domain.Rule, l *domain.Listing) Result {
	price := l.Price.Amount
	if rule.PriceMin != nil && price < *rule.PriceMin {
		return fail(StagePrice, "price %.2f below minimum %.2f", price, *rule.PriceMin)
	}
	if rule.PriceMax != nil && price > *rule.PriceMax {
		return fail(StagePrice, "price %.2f above maximum %.2f", price, *rule.PriceMax)
	}
	return pass()
}

func checkKeywords(rule *domain.Rule, l *domain.Listing) Result {
	if len(rule.Keywords) == 0 || len(matching(l, rule.Keywords)) > 0 {
		return pass()
	}
	return fail(StageKeywords, "no keyword of %s in title or brand", strings.Join(rule.Keywords, ", "))
}

func checkInclude(rule *domain.Rule, l *domain.Listing) Result {
	if len(rule.IncludeKeywords) == 0 || len(matching(l, rule.IncludeKeywords)) > 0 {
		return pass()
	}
	return fail(StageInclude, "missing required keyword(s): %s", strings.Join(rule.IncludeKeywords, ", "))
}

func checkExclude(rule *domain.Rule, l *domain.Listing) Result {
	if hits := matching(l, rule.ExcludeKeywords); len(hits) > 0 {
		return fail(StageExclude, "contains excluded keyword(s): %s", strings.Join(hits, ", "))
	}
	return pass()
}

// A missing rating fails whenever a threshold is set.
func checkSellerRating(rule *domain.Rule, l *domain.Listing) Result {
	if rule.MinSellerRating == nil {
		return pass()
	}
	if l.SellerRating == nil {
		return fail(StageSellerRating, "seller rating not available")
	}
	if *l.SellerRating < *rule.MinSellerRating {
		return fail(StageSellerRating, "seller rating %.1f below minimum %.1f", *l.SellerRating, *rule.MinSellerRating)
	}
	return pass()
}

func checkSellerReviews(rule *domain.Rule, l *domain.Listing) Result {
	if rule.MinSellerReviews == nil {
		return pass()
	}
	if l.SellerReviews == nil {
		return fail(StageSellerReviews, "seller review count not available")
	}
	if *l.SellerReviews < *rule.MinSellerReviews {
		return fail(StageSellerReviews, "seller has %d reviews, minimum %d", *l.SellerReviews, *rule.MinSellerReviews)
	}
	return pass()
}

// matching returns the keywords found case-insensitively in the title or
// brand. Blank keywords never match.
func matching(l *domain.Listing, keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	title := strings.ToLower(l.Title)
	brand := strings.ToLower(l.Brand)

	var hits []string
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if strings.Contains(title, k) || strings.Contains(brand, k) {
			hits = append(hits, kw)
		}
	}
	return hits
}
