package notify

import (
	"context"
	"fmt"
	"sync"
)

// MockNotifier records notifications and can be configured to fail for
// given carriers. It is used in tests.
type MockNotifier struct {
	mu       sync.Mutex
	Sent     []Notification
	FailIDs  map[string]bool
	Attempts int
}

// NewMockNotifier creates an empty MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{FailIDs: make(map[string]bool)}
}

func (m *MockNotifier) Notify(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attempts++
	if m.FailIDs[n.CarrierID] {
		return fmt.Errorf("deliver to %s: %w", n.CarrierID, ErrUnavailable)
	}
	m.Sent = append(m.Sent, n)
	return nil
}

// Messages returns a copy of the delivered notifications.
func (m *MockNotifier) Messages() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.Sent...)
}
