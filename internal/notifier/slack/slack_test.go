package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagonwheel/crickstats/internal/metrics"
	"github.com/wagonwheel/crickstats/internal/notifier"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	n := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := n.sendMessage(message, true)
	require.NoError(t, err)
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := n.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	postMessageCalled := false
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := n.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestFormatMigrationSummary(t *testing.T) {
	n := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	summary := notifier.MigrationSummary{
		RunID:     "run-abc",
		StartedAt: time.Date(2024, 5, 4, 10, 30, 0, 0, time.UTC),
		Duration:  92 * time.Second,
		Phases: []notifier.PhaseSummary{
			{Phase: "teams", Processed: 12, Migrated: 12, Errors: 0},
			{Phase: "matches", Processed: 40, Migrated: 38, Errors: 2},
		},
		HadErrors: true,
	}

	msg := n.formatMigrationSummary(summary)
	require.NotEmpty(t, msg.Blocks.BlockSet)

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok, "first block should be a header")
	assert.Contains(t, header.Text.Text, "with errors")

	body, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok, "third block should be the phase section")
	assert.Contains(t, body.Text.Text, "teams — processed 12, migrated 12, errors 0")
	assert.Contains(t, body.Text.Text, "matches — processed 40, migrated 38, errors 2")
}

func TestSendOperatorWarnings(t *testing.T) {
	t.Run("no warnings sends nothing", func(t *testing.T) {
		called := false
		api := &mockSlackAPI{
			postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
				called = true
				return "C123", "ts", nil
			},
		}
		n := NewNotifierWithAPI(api, "C123", metrics.NewMock())

		err := n.SendOperatorWarnings("run-1", nil, false)
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("truncates long warning lists", func(t *testing.T) {
		warnings := make([]string, maxWarningLines+5)
		for i := range warnings {
			warnings[i] = "ambiguous fielder name"
		}
		n := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

		msg := n.formatOperatorWarnings("run-1", warnings)
		body, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, body.Text.Text, "and 5 more")
	})
}
