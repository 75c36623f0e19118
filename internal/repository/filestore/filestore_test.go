package filestore

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestSlot_ReadMissingFile(t *testing.T) {
	s := New(afero.NewMemMapFs(), "data", "devhost_snippets")

	_, ok, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if ok {
		t.Error("Read() ok = true for a file that does not exist")
	}
}

func TestSlot_WriteCreatesDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := New(fsys, "nested/data", "devhost_snippets")
	ctx := context.Background()

	if err := s.Write(ctx, []byte(`[]`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if s.Path() != "nested/data/devhost_snippets.json" {
		t.Errorf("Path() = %q", s.Path())
	}
	exists, err := afero.Exists(fsys, s.Path())
	if err != nil || !exists {
		t.Fatalf("slot file missing after Write(): exists=%v err=%v", exists, err)
	}
	tmpExists, _ := afero.Exists(fsys, s.Path()+".tmp")
	if tmpExists {
		t.Error("temporary file left behind after Write()")
	}

	data, ok, err := s.Read(ctx)
	if err != nil || !ok || string(data) != `[]` {
		t.Errorf("Read() = %q, %v, %v", data, ok, err)
	}
}

func TestSlot_Overwrite(t *testing.T) {
	s := New(afero.NewMemMapFs(), "data", "slot")
	ctx := context.Background()

	if err := s.Write(ctx, []byte(`["a","b","c"]`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Write(ctx, []byte(`["d"]`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, _, _ := s.Read(ctx)
	if string(data) != `["d"]` {
		t.Errorf("Read() = %q, want the shorter second write", data)
	}
}

func TestSlot_ReadOnlyFilesystem(t *testing.T) {
	base := afero.NewMemMapFs()
	if err := afero.WriteFile(base, "data/slot.json", []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(afero.NewReadOnlyFs(base), "data", "slot")

	if _, ok, err := s.Read(context.Background()); err != nil || !ok {
		t.Fatalf("Read() on read-only fs = %v, %v", ok, err)
	}
	if err := s.Write(context.Background(), []byte(`[1]`)); err == nil {
		t.Error("Write() on a read-only filesystem succeeded")
	}
}

func TestSlot_CancelledContext(t *testing.T) {
	s := New(afero.NewMemMapFs(), "data", "slot")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := s.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}
	if err := s.Write(ctx, []byte(`[]`)); !errors.Is(err, context.Canceled) {
		t.Errorf("Write() error = %v, want context.Canceled", err)
	}
}
