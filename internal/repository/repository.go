// Package repository defines the persistence capability the snippet store is
// built on.
//
// The store never talks to a database directly. It reads and writes one opaque
// blob, the slot, through the Slot interface. Backends live in subpackages:
//
//	repository/memory     in-process, used by tests
//	repository/filestore  one JSON file on an afero filesystem
//	repository/sqlite     a row in a SQLite table
//	repository/dynamo     an item in a DynamoDB table
package repository

import "context"

// DefaultSlotName is the slot the snippet list is stored under. It matches the
// key used by the browser build, so a slot exported from there loads as-is.
const DefaultSlotName = "devhost_snippets"

// Slot is a single named blob with whole-value reads and writes.
//
// Read reports ok=false when nothing has been written yet. Write replaces the
// stored bytes unconditionally: there is no compare-and-swap, the last write wins.
type Slot interface {
	Read(ctx context.Context) (data []byte, ok bool, err error)
	Write(ctx context.Context, data []byte) error
}
