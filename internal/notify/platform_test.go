package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

func TestPlatforms_Lookup(t *testing.T) {
	t.Parallel()

	ps := DefaultPlatforms()

	p, err := ps.Lookup(domain.PlatformSlack)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformSlack, p.Name())

	p, err = ps.Lookup(domain.PlatformDiscord)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformDiscord, p.Name())

	_, err = ps.Lookup("teams")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported platform "teams"`)
}

func TestDiscordPlatform_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		candidates  []domain.Candidate
		wantEmbeds  int
		wantColors  []int
		wantContent string
		wantErr     string
	}{
		{
			name:        "single new listing",
			candidates:  []domain.Candidate{candidate("1", "fr", 40, domain.MatchNew)},
			wantEmbeds:  1,
			wantColors:  []int{colorGreen},
			wantContent: "🔔 **New: shoes (fr)**",
		},
		{
			name:        "single price drop",
			candidates:  []domain.Candidate{candidate("1", "fr", 40, domain.MatchPriceDrop)},
			wantEmbeds:  1,
			wantColors:  []int{colorOrange},
			wantContent: "🔔 **Price drop: shoes (fr)**",
		},
		{
			name: "digest carries summary in content",
			candidates: []domain.Candidate{
				candidate("1", "fr", 40, domain.MatchNew),
				candidate("2", "fr", 20, domain.MatchPriceDrop),
			},
			wantEmbeds:  2,
			wantColors:  []int{colorGreen, colorOrange},
			wantContent: "🔔 **1 new listing and 1 price drop: shoes (fr)**\n📊 Total: 2 items | Avg price: 30.00 EUR",
		},
		{
			name:    "empty message",
			wantErr: "empty message for shoes",
		},
		{
			name: "too many listings",
			candidates: func() []domain.Candidate {
				cs := make([]domain.Candidate, 11)
				for i := range cs {
					cs[i] = candidate(string(rune('a'+i)), "fr", 10, domain.MatchNew)
				}
				return cs
			}(),
			wantErr: "has 11 listings, max 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := DiscordPlatform{}.Format(NewMessage("shoes", tt.candidates))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			payload, ok := out.(discordWebhookPayload)
			require.True(t, ok)
			assert.Equal(t, tt.wantContent, payload.Content)
			require.Len(t, payload.Embeds, tt.wantEmbeds)

			for i, e := range payload.Embeds {
				assert.Equal(t, tt.wantColors[i], e.Color)
				assert.Equal(t, tt.candidates[i].Listing.Title, e.Title)
				assert.Equal(t, tt.candidates[i].Listing.URL, e.URL)
				assert.Equal(t, "ID: "+tt.candidates[i].Listing.ID, e.Footer.Text)
				require.NotNil(t, e.Thumbnail)
				assert.Equal(t, tt.candidates[i].Listing.ThumbnailURL, e.Thumbnail.URL)
				assert.Contains(t, e.Description, "**Price:**")
			}
		})
	}
}

func TestDiscordPlatform_NoThumbnail(t *testing.T) {
	t.Parallel()

	c := candidate("1", "fr", 40, domain.MatchNew)
	c.Listing.ThumbnailURL = ""
	c.Listing.Title = strings.Repeat("x", 300)

	out, err := DiscordPlatform{}.Format(NewMessage("shoes", []domain.Candidate{c}))
	require.NoError(t, err)

	embed := out.(discordWebhookPayload).Embeds[0]
	assert.Nil(t, embed.Thumbnail)
	assert.Len(t, []rune(embed.Title), 256)
	assert.True(t, strings.HasSuffix(embed.Title, "…"))
}

func TestDiscordPlatform_Endpoint(t *testing.T) {
	t.Parallel()

	got, err := DiscordPlatform{}.Endpoint("https://discord.com/api/webhooks/1/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc?wait=true", got)

	got, err = DiscordPlatform{}.Endpoint("https://discord.com/api/webhooks/1/abc?thread_id=7")
	require.NoError(t, err)
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc?thread_id=7&wait=true", got)

	_, err = DiscordPlatform{}.Endpoint("not a url")
	require.Error(t, err)
}

func TestSlackPlatform_Format(t *testing.T) {
	t.Parallel()

	t.Run("single listing", func(t *testing.T) {
		t.Parallel()

		c := candidate("77", "fr", 40, domain.MatchNew)
		out, err := SlackPlatform{}.Format(NewMessage("shoes", []domain.Candidate{c}))
		require.NoError(t, err)

		payload, ok := out.(slackPayload)
		require.True(t, ok)
		assert.Equal(t, "New: shoes (fr): Nike Air Max 77 - 40.00 EUR", payload.Text)

		types := make([]string, 0, len(payload.Blocks))
		for _, b := range payload.Blocks {
			types = append(types, b.Type)
		}
		assert.Equal(t, []string{"header", "section", "context", "divider"}, types)

		assert.Equal(t, "🔔 New: shoes (fr)", payload.Blocks[0].Text.Text)
		section := payload.Blocks[1]
		assert.Contains(t, section.Text.Text, "*<https://www.vinted.fr/items/77|Nike Air Max 77>*")
		assert.Contains(t, section.Text.Text, "*Price:* 40.00 EUR | *Size:* 42")
		require.NotNil(t, section.Accessory)
		assert.Equal(t, c.Listing.ThumbnailURL, section.Accessory.ImageURL)
		assert.Equal(t, "<https://www.vinted.fr/items/77|View on Vinted> • Listing ID: 77", payload.Blocks[2].Elements[0].Text)
	})

	t.Run("digest", func(t *testing.T) {
		t.Parallel()

		out, err := SlackPlatform{}.Format(NewMessage("shoes", []domain.Candidate{
			candidate("1", "fr", 40, domain.MatchNew),
			candidate("2", "fr", 20, domain.MatchNew),
		}))
		require.NoError(t, err)

		payload := out.(slackPayload)
		assert.Equal(t, "2 new listings: shoes (fr)", payload.Text)

		last := payload.Blocks[len(payload.Blocks)-1]
		assert.Equal(t, "context", last.Type)
		assert.Equal(t, "📊 Total: 2 items | Avg price: 30.00 EUR", last.Elements[0].Text)
	})

	t.Run("long header is capped", func(t *testing.T) {
		t.Parallel()

		msg := NewMessage(strings.Repeat("é", 200), []domain.Candidate{candidate("1", "fr", 40, domain.MatchNew)})
		out, err := SlackPlatform{}.Format(msg)
		require.NoError(t, err)

		header := out.(slackPayload).Blocks[0].Text.Text
		assert.Len(t, []rune(header), slackHeaderMax)
		assert.True(t, strings.HasPrefix(header, "🔔 New: éé"))
		assert.True(t, strings.HasSuffix(header, "…"))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		_, err := SlackPlatform{}.Format(&Message{Rule: "shoes"})
		require.Error(t, err)
	})
}

func TestSlackEscape(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a &lt;b&gt; &amp; c¦d", slackEscape("a <b> & c|d"))
}
