package ocr

import (
	"context"
	"sync"
)

// MockEngine is a scripted engine for tests. It returns Text, or Err when set,
// and counts calls.
type MockEngine struct {
	Text string
	Err  error

	mu     sync.Mutex
	calls  int
	images [][]byte
}

// NewMockEngine returns an engine that always recognizes text.
func NewMockEngine(text string) *MockEngine {
	return &MockEngine{Text: text}
}

// NewFailingEngine returns an engine whose every call fails with err.
func NewFailingEngine(err error) *MockEngine {
	return &MockEngine{Err: err}
}

// Name returns "mock".
func (m *MockEngine) Name() string { return "mock" }

// Recognize records the call and returns the scripted result.
func (m *MockEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	m.mu.Lock()
	m.calls++
	m.images = append(m.images, image)
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// Calls returns how many times Recognize was called.
func (m *MockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Images returns the images passed to Recognize, in call order.
func (m *MockEngine) Images() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.images...)
}
