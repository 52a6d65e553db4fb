// Package mockboard provides a mock clipboard implementation for testing.
package mockboard

import (
	"context"
	"sync"
)

type read struct {
	text string
	err  error
}

// MockClipboard is an in-memory clipboard. Reads can be scripted with
// Queue and QueueError; once the script is exhausted reads return the
// current text.
type MockClipboard struct {
	mu       sync.Mutex
	text     string
	script   []read
	readErr  error
	writeErr error
	reads    int
	writes   int
	onRead   func(ctx context.Context)
}

// New creates a new MockClipboard instance
func New() *MockClipboard {
	return &MockClipboard{}
}

// Name identifies the backend in logs.
func (m *MockClipboard) Name() string {
	return "mock"
}

// ReadText returns the next scripted value or the current text.
func (m *MockClipboard) ReadText(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.reads++
	hook := m.onRead
	var text string
	var err error
	switch {
	case len(m.script) > 0:
		next := m.script[0]
		m.script = m.script[1:]
		if next.err == nil {
			m.text = next.text
		}
		text, err = next.text, next.err
	case m.readErr != nil:
		err = m.readErr
	default:
		text = m.text
	}
	m.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	return text, err
}

// WriteText replaces the current text.
func (m *MockClipboard) WriteText(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.text = text
	return nil
}

// SetText sets the clipboard text directly, as another application would.
func (m *MockClipboard) SetText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
}

// Text returns the current clipboard text.
func (m *MockClipboard) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Queue scripts the values returned by the next reads.
func (m *MockClipboard) Queue(texts ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range texts {
		m.script = append(m.script, read{text: t})
	}
}

// QueueError scripts a failing read.
func (m *MockClipboard) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, read{err: err})
}

// FailReads makes unscripted reads fail with err. Pass nil to recover.
func (m *MockClipboard) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes writes fail with err. Pass nil to recover.
func (m *MockClipboard) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// OnRead registers a hook run after each read, outside the lock.
// Tests use it to hold a read in flight.
func (m *MockClipboard) OnRead(hook func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRead = hook
}

// Reads returns how many reads have happened.
func (m *MockClipboard) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Writes returns how many writes have happened.
func (m *MockClipboard) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
