package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	slacklib "github.com/slack-go/slack"

	"github.com/parleylabs/parley/internal/live"
)

// SlackAPI abstracts the subset of the Slack client used by SlackNotifier.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessage(channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackNotifier posts a one-line digest to an ops channel whenever a live
// session finalizes. Delivery is best effort; the caller decides what a
// failed post means.
type SlackNotifier struct {
	api     SlackAPI
	channel string
}

// Compile-time interface check.
var _ live.Notifier = (*SlackNotifier)(nil) //nolint:gochecknoglobals // compile-time check

// NewSlackNotifier creates a SlackNotifier posting to the given channel.
func NewSlackNotifier(api SlackAPI, channel string) *SlackNotifier {
	return &SlackNotifier{api: api, channel: channel}
}

// SessionFinalized posts the digest for one finished interview.
func (n *SlackNotifier) SessionFinalized(_ context.Context, sessionID uuid.UUID, agentName, reason string, score int) error {
	text := fmt.Sprintf("Interview %s with %s ended (%s), overall score %d/100.", sessionID, agentName, reason, score)

	_, _, err := n.api.PostMessage(n.channel, slacklib.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("notify.SlackNotifier.SessionFinalized: %w", err)
	}

	return nil
}
