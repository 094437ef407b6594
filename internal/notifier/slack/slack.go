package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/wagonwheel/crickstats/internal/metrics"
	"github.com/wagonwheel/crickstats/internal/notifier"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		s.metrics.IncSlackNotifFailed()
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	s.metrics.IncSlackNotifSent()
	return channelID, timestamp, nil
}

// SendMigrationSummary posts the final per-phase report of a migration run.
func (s *Notifier) SendMigrationSummary(summary notifier.MigrationSummary, dryRun bool) error {
	msg := s.formatMigrationSummary(summary)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// SendOperatorWarnings posts conditions that need a human decision. Warnings
// are truncated to keep the message inside Slack's block limits.
func (s *Notifier) SendOperatorWarnings(runID string, warnings []string, dryRun bool) error {
	if len(warnings) == 0 {
		return nil
	}
	msg := s.formatOperatorWarnings(runID, warnings)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) formatMigrationSummary(summary notifier.MigrationSummary) slack.Message {
	blocks := make([]slack.Block, 0)

	header := "Migration run completed"
	if summary.HadErrors {
		header = "Migration run completed with errors"
	}
	headerText := slack.NewTextBlockObject("plain_text", header, false, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Run: %s\nStarted: %s\nDuration: %s",
		summary.RunID,
		summary.StartedAt.Format("Monday 02 Jan, 15:04"),
		summary.Duration.Round(time.Second))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, false, false), nil, nil))

	var lines []string
	for _, p := range summary.Phases {
		lines = append(lines, fmt.Sprintf("%s — processed %d, migrated %d, errors %d",
			p.Phase, p.Processed, p.Migrated, p.Errors))
	}
	if len(lines) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

const maxWarningLines = 20

func (s *Notifier) formatOperatorWarnings(runID string, warnings []string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "Migration needs operator review", false, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	shown := warnings
	if len(shown) > maxWarningLines {
		shown = shown[:maxWarningLines]
	}
	var lines []string
	for _, w := range shown {
		lines = append(lines, "• "+w)
	}
	if len(warnings) > maxWarningLines {
		lines = append(lines, fmt.Sprintf("…and %d more", len(warnings)-maxWarningLines))
	}
	body := fmt.Sprintf("Run %s flagged %d condition(s):\n%s", runID, len(warnings), strings.Join(lines, "\n"))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", body, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}
