// Package clipboard writes text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnavailable means no clipboard utility was found (for example xclip or
// xsel on Linux, or a headless server).
var ErrUnavailable = errors.New("clipboard: unavailable")

// Writer receives text for the clipboard. The snippet detail view copies code
// through it.
type Writer interface {
	WriteText(text string) error
}

// System is the OS clipboard.
type System struct{}

func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: writing: %w", err)
	}
	return nil
}

// Memory keeps the last written text in place of the system clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
}

func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
