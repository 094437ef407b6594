package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventPhaseStarted       EventType = "migration-phase-started"
	EventPhaseCompleted     EventType = "migration-phase-completed"
	EventMigrationCompleted EventType = "migration-completed"
	EventEntityMerged       EventType = "entity-merged"
)

// ProgressEvent is the payload published for migration progress topics.
type ProgressEvent struct {
	RunID     string `msgpack:"run_id"`
	Phase     string `msgpack:"phase"`
	Processed int    `msgpack:"processed"`
	Migrated  int    `msgpack:"migrated"`
	Errors    int    `msgpack:"errors"`
	At        int64  `msgpack:"at"`
}
