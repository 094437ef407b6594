package pubsub

// PubSubClient publishes and decodes migration progress events.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, out any) error
}
