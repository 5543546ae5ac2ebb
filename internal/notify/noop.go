package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

// NoOpSender implements Sender by logging the payload each target would have
// received. It is used for dry runs.
type NoOpSender struct {
	log       *slog.Logger
	platforms Platforms
	count     atomic.Int64
}

// NewNoOpSender creates a sender that formats and logs, but never posts.
func NewNoOpSender(log *slog.Logger) *NoOpSender {
	return &NoOpSender{log: log, platforms: DefaultPlatforms()}
}

// Send formats msg for the target platform and logs it. Formatting errors
// are returned so a dry run surfaces them like a real run would.
func (n *NoOpSender) Send(_ context.Context, target domain.Webhook, msg *Message) error {
	platform, err := n.platforms.Lookup(target.Platform)
	if err != nil {
		return &DeliveryError{Platform: target.Platform, Err: err}
	}
	payload, err := platform.Format(msg)
	if err != nil {
		return &DeliveryError{Platform: target.Platform, Err: err}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Platform: target.Platform, Err: err}
	}

	n.count.Add(1)
	n.log.Info("dry run: notification not sent",
		"platform", target.Platform,
		"rule", msg.Rule,
		"items", len(msg.Items),
		"headline", msg.Headline(),
		"payload", string(body),
	)
	return nil
}

// Count returns how many payloads were logged.
func (n *NoOpSender) Count() int64 {
	return n.count.Load()
}
