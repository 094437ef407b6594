package pubsub

import "sync"

// MockPubSubClient is a spy PubSubClient for tests. Safe for concurrent use;
// the orchestrator publishes from the run goroutine while tests read calls.
type MockPubSubClient struct {
	mu sync.Mutex

	SendMessageFunc    func(topic EventType, data any) error
	ProcessMessageFunc func(data []byte, out any) error

	SendMessageCalls    []SendMessageCall
	ProcessMessageCalls []ProcessMessageCall
}

// SendMessageCall records one published event.
type SendMessageCall struct {
	Topic string
	Data  any
}

// ProcessMessageCall records one decoded payload.
type ProcessMessageCall struct {
	Data []byte
	Out  any
}

// NewMock creates a mock client. The projectID is ignored.
func NewMock(projectID string) *MockPubSubClient {
	return &MockPubSubClient{}
}

// Reset clears the recorded calls.
func (m *MockPubSubClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMessageCalls = nil
	m.ProcessMessageCalls = nil
}

func (m *MockPubSubClient) SendMessage(topic EventType, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMessageCalls = append(m.SendMessageCalls, SendMessageCall{Topic: string(topic), Data: data})
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(topic, data)
	}
	return nil
}

func (m *MockPubSubClient) ProcessMessage(data []byte, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProcessMessageCalls = append(m.ProcessMessageCalls, ProcessMessageCall{Data: data, Out: out})
	if m.ProcessMessageFunc != nil {
		return m.ProcessMessageFunc(data, out)
	}
	return nil
}
