// Package filestore implements repository.Slot as a single JSON file.
//
// The filesystem is an afero.Fs so production uses the OS filesystem and tests
// use afero.NewMemMapFs() without touching disk.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sakif/devhost/internal/repository"
)

var _ repository.Slot = (*Slot)(nil)

// Slot stores its blob at <dir>/<name>.json.
type Slot struct {
	fs   afero.Fs
	path string
}

// New returns a slot backed by a file under dir. The directory is created on
// first write.
func New(fsys afero.Fs, dir, name string) *Slot {
	return &Slot{
		fs:   fsys,
		path: filepath.Join(dir, name+".json"),
	}
}

// Path is the file the slot reads and writes.
func (s *Slot) Path() string {
	return s.path
}

func (s *Slot) Read(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("filestore: reading %s: %w", s.path, err)
	}
	return data, true, nil
}

// Write replaces the file contents. The bytes go to a temporary file that is
// renamed over the target, so a reader sees either the old or the new list.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("filestore: creating directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("filestore: writing %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("filestore: replacing %s: %w", s.path, err)
	}
	return nil
}
