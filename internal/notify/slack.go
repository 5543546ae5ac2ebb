package notify

import (
	"fmt"
	"net/url"
	"strings"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// Slack rejects header blocks longer than this.
const slackHeaderMax = 150

// SlackPlatform formats messages as Slack Block Kit payloads.
type SlackPlatform struct{}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type      string      `json:"type"`
	Text      *slackText  `json:"text,omitempty"`
	Accessory *slackImage `json:"accessory,omitempty"`
	Elements  []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type slackImage struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text"`
}

// Name implements Platform.
func (SlackPlatform) Name() domain.Platform { return domain.PlatformSlack }

// Endpoint implements Platform. Slack webhooks are posted to as configured.
func (SlackPlatform) Endpoint(webhookURL string) (string, error) {
	if _, err := url.ParseRequestURI(webhookURL); err != nil {
		return "", fmt.Errorf("invalid slack webhook url: %w", err)
	}
	return webhookURL, nil
}

// Format implements Platform.
func (SlackPlatform) Format(msg *Message) (any, error) {
	if len(msg.Items) == 0 {
		return nil, fmt.Errorf("empty message for %s", msg.Rule)
	}

	blocks := []slackBlock{{
		Type: "header",
		Text: &slackText{Type: "plain_text", Text: truncate("🔔 "+msg.Headline(), slackHeaderMax), Emoji: true},
	}}

	for i := range msg.Items {
		blocks = append(blocks, slackItemBlock(&msg.Items[i]))
		if !msg.IsDigest() {
			blocks = append(blocks, slackBlock{
				Type: "context",
				Elements: []slackText{{
					Type: "mrkdwn",
					Text: fmt.Sprintf("<%s|View on Vinted> • Listing ID: %s", msg.Items[i].URL, msg.Items[i].ID),
				}},
			})
		}
		blocks = append(blocks, slackBlock{Type: "divider"})
	}

	if msg.IsDigest() {
		blocks = append(blocks, slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: "📊 " + msg.Summary()}},
		})
	}

	return slackPayload{Text: slackFallback(msg), Blocks: blocks}, nil
}

func slackItemBlock(it *Item) slackBlock {
	details := it.details(func(name, value string) string {
		return fmt.Sprintf("*%s:* %s", name, value)
	})
	b := slackBlock{
		Type: "section",
		Text: &slackText{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*<%s|%s>*\n%s", it.URL, slackEscape(it.Title), strings.Join(details, " | ")),
		},
	}
	if it.ThumbnailURL != "" {
		b.Accessory = &slackImage{Type: "image", ImageURL: it.ThumbnailURL, AltText: it.Title}
	}
	return b
}

// slackFallback is the plain text shown in notifications and by clients
// that cannot render blocks.
func slackFallback(msg *Message) string {
	if msg.IsDigest() {
		return msg.Headline()
	}
	it := msg.Items[0]
	return fmt.Sprintf("%s: %s - %s", msg.Headline(), it.Title, it.Price)
}

// slackEscape escapes the control characters of mrkdwn link text.
func slackEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "|", "¦")
	return r.Replace(s)
}
