// Package pubsub publishes migration progress events so dashboards and other
// consumers can follow a long run without polling the journal.
package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	crerr "github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// New creates a Google Pub/Sub backed client. Topics are named after the
// EventType constants and must exist already.
func New(projectID string) PubSubClient {
	gc, err := pubsub.NewClient(context.Background(), projectID)
	if err != nil {
		log.Fatalf("Failed to create pubsub client: %v", err)
	}
	return &client{
		client:   gc,
		teardown: func() { gc.Close() },
	}
}

// SendMessage publishes one msgpack-encoded event and waits for the server
// acknowledgement. Publish failures are the caller's to tolerate; progress
// events are advisory, not part of the migration's correctness.
func (c *client) SendMessage(topic EventType, data any) error {
	blob, err := msgpack.Marshal(data)
	if err != nil {
		return crerr.Wrapf(err, "encode event for %s", topic)
	}
	ctx := context.Background()
	result := c.client.Topic(string(topic)).Publish(ctx, &pubsub.Message{Data: blob})
	serverID, err := result.Get(ctx)
	if err != nil {
		return crerr.Wrapf(err, "publish to %s", topic)
	}
	log.Debug("Published event", "topic", topic, "serverId", serverID)
	return nil
}

// ProcessMessage decodes a received payload into out.
func (c *client) ProcessMessage(data []byte, out any) error {
	return crerr.Wrap(msgpack.Unmarshal(data, out), "decode event payload")
}
