package vinted_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vinted-notifier/internal/vinted"
)

func TestPacer_SpacesRequestsPerLocale(t *testing.T) {
	t.Parallel()

	const spacing = 50 * time.Millisecond
	p := vinted.NewPacer(spacing)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, p.Wait(ctx, "fr"))
	require.NoError(t, p.Wait(ctx, "de"))
	assert.Less(t, time.Since(start), spacing, "different locales do not wait on each other")

	require.NoError(t, p.Wait(ctx, "fr"))
	assert.GreaterOrEqual(t, time.Since(start), spacing-5*time.Millisecond)
}

func TestPacer_ZeroSpacingNeverWaits(t *testing.T) {
	t.Parallel()

	p := vinted.NewPacer(0)
	start := time.Now()
	for range 100 {
		require.NoError(t, p.Wait(context.Background(), "fr"))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestPacer_WaitHonorsContext(t *testing.T) {
	t.Parallel()

	p := vinted.NewPacer(time.Hour)
	require.NoError(t, p.Wait(context.Background(), "fr"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := p.Wait(ctx, "fr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pacing fr")
}

func TestPacer_Jitter(t *testing.T) {
	t.Parallel()

	p := vinted.NewPacer(0, vinted.WithJitter(5*time.Millisecond))
	require.NoError(t, p.Wait(context.Background(), "fr"))
}
