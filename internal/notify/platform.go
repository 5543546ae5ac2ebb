package notify

import (
	"fmt"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// Platform maps a Message onto one chat platform's webhook payload.
type Platform interface {
	Name() domain.Platform
	// Format returns the JSON-encodable payload for msg.
	Format(msg *Message) (any, error)
	// Endpoint returns the URL to POST to for a configured webhook.
	Endpoint(webhookURL string) (string, error)
}

// Platforms is a registry of formatters keyed by platform name.
type Platforms map[domain.Platform]Platform

// DefaultPlatforms returns the Slack and Discord formatters.
func DefaultPlatforms() Platforms {
	return Platforms{
		domain.PlatformSlack:   SlackPlatform{},
		domain.PlatformDiscord: DiscordPlatform{},
	}
}

// Lookup returns the formatter for p.
func (ps Platforms) Lookup(p domain.Platform) (Platform, error) {
	if f, ok := ps[p]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("unsupported platform %q", p)
}
