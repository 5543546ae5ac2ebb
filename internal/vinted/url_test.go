package vinted_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/vinted-notifier/internal/vinted"
)

func TestDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		locale string
		want   string
	}{
		{locale: "en", want: "com"},
		{locale: "FR", want: "fr"},
		{locale: "de", want: "de"},
		{locale: "nl", want: "nl"},
		{locale: "pl", want: "pl"},
		{locale: "it", want: "it"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, vinted.Domain(tt.locale))
		})
	}
}

func TestBuildSearchURL(t *testing.T) {
	t.Parallel()

	got := vinted.BuildSearchURL([]string{"air", "jordan 1"}, "en")
	assert.Equal(t, "https://www.vinted.com/catalog?order=newest_first&search_text=air+jordan+1", got)
}

func TestQuery_SkipsBlankKeywords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b", vinted.Query([]string{"a", "  ", " b "}))
	assert.Empty(t, vinted.Query(nil))
}
