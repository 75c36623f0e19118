// Package memory implements repository.Slot in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/sakif/devhost/internal/repository"
)

var _ repository.Slot = (*Slot)(nil)

// Slot keeps the blob in memory. The mutex protects the byte slice only; it
// does not serialize a caller's read-modify-write.
type Slot struct {
	mu     sync.Mutex
	data   []byte
	ok     bool
	writes int
}

func New() *Slot {
	return &Slot{}
}

// NewWithData returns a slot that already holds data, as if written earlier.
func NewWithData(data []byte) *Slot {
	return &Slot{data: clone(data), ok: true}
}

func (s *Slot) Read(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ok {
		return nil, false, nil
	}
	return clone(s.data), true, nil
}

func (s *Slot) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = clone(data)
	s.ok = true
	s.writes++
	return nil
}

// Writes is the number of successful Write calls.
func (s *Slot) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
