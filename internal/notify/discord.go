package notify

import (
	"fmt"
	"net/url"
	"strings"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

const (
	colorGreen  = 0x00D166 // new listing
	colorOrange = 0xE67E22 // price drop

	// Discord allows max 10 embeds per message.
	maxDiscordEmbeds = 10
)

// DiscordPlatform formats messages as Discord embeds.
type DiscordPlatform struct{}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string            `json:"title"`
	URL         string            `json:"url,omitempty"`
	Color       int               `json:"color"`
	Description string            `json:"description,omitempty"`
	Thumbnail   *discordThumbnail `json:"thumbnail,omitempty"`
	Footer      *discordFooter    `json:"footer,omitempty"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// Name implements Platform.
func (DiscordPlatform) Name() domain.Platform { return domain.PlatformDiscord }

// Endpoint implements Platform. wait=true makes Discord answer with the
// created message, so a 2xx confirms delivery.
func (DiscordPlatform) Endpoint(webhookURL string) (string, error) {
	u, err := url.ParseRequestURI(webhookURL)
	if err != nil {
		return "", fmt.Errorf("invalid discord webhook url: %w", err)
	}
	q := u.Query()
	q.Set("wait", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Format implements Platform. A digest puts the count and average price in
// the message content so every embed slot holds a listing.
func (DiscordPlatform) Format(msg *Message) (any, error) {
	if len(msg.Items) == 0 {
		return nil, fmt.Errorf("empty message for %s", msg.Rule)
	}
	if len(msg.Items) > maxDiscordEmbeds {
		return nil, fmt.Errorf("discord message for %s has %d listings, max %d", msg.Rule, len(msg.Items), maxDiscordEmbeds)
	}

	embeds := make([]discordEmbed, 0, len(msg.Items))
	for i := range msg.Items {
		embeds = append(embeds, buildEmbed(&msg.Items[i]))
	}

	content := fmt.Sprintf("🔔 **%s**", msg.Headline())
	if msg.IsDigest() {
		content += "\n📊 " + msg.Summary()
	}

	return discordWebhookPayload{Content: content, Embeds: embeds}, nil
}

func buildEmbed(it *Item) discordEmbed {
	details := it.details(func(name, value string) string {
		return fmt.Sprintf("**%s:** %s", name, value)
	})

	embed := discordEmbed{
		Title:       truncate(it.Title, 256),
		URL:         it.URL,
		Color:       kindColor(it.Kind),
		Description: strings.Join(details, "\n"),
		Footer:      &discordFooter{Text: "ID: " + it.ID},
	}

	if it.ThumbnailURL != "" {
		embed.Thumbnail = &discordThumbnail{URL: it.ThumbnailURL}
	}

	return embed
}

func kindColor(k domain.MatchKind) int {
	if k == domain.MatchPriceDrop {
		return colorOrange
	}
	return colorGreen
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
