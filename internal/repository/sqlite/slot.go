package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/devhost/internal/repository"
)

var _ repository.Slot = (*Slot)(nil)

// Slot is one row of the slots table.
type Slot struct {
	db   *DB
	name string
}

// Slot returns the slot stored under name. The row is created on first write.
func (db *DB) Slot(name string) *Slot {
	return &Slot{db: db, name: name}
}

// Read returns the stored blob. sql.ErrNoRows means nothing was written yet
// and is reported as ok=false rather than an error.
func (s *Slot) Read(ctx context.Context) ([]byte, bool, error) {
	var data []byte
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT data FROM slots WHERE name = ?`,
		s.name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: reading slot %s: %w", s.name, err)
	}
	return data, true, nil
}

// Write upserts the row. ON CONFLICT turns the INSERT into an UPDATE when the
// slot already exists, in one statement.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO slots (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.name,
		data,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing slot %s: %w", s.name, err)
	}
	return nil
}
