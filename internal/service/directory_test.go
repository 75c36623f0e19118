package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sakif/devhost/internal/apperror"
	"github.com/sakif/devhost/internal/model"
	"github.com/sakif/devhost/internal/repository/memory"
	"github.com/sakif/devhost/internal/store"
)

func TestDirectory_StartsEmpty(t *testing.T) {
	d, _ := newTestDirectory(t, sampleSnippets()...)

	if got := d.Snippets(); len(got) != 0 {
		t.Errorf("Snippets() before Refresh = %d, want 0", len(got))
	}
	if d.Loading() {
		t.Error("Loading() = true before any refresh")
	}
}

func TestDirectory_Refresh(t *testing.T) {
	d, _ := newTestDirectory(t, sampleSnippets()...)

	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := d.Snippets(); len(got) != 4 || got[0].ID != "a" {
		t.Errorf("Snippets() = %v", titles(got))
	}
	if d.Loading() {
		t.Error("Loading() = true after Refresh() returned")
	}
}

func TestDirectory_RefreshFailureKeepsList(t *testing.T) {
	d, repo := newTestDirectory(t, sampleSnippets()...)
	ctx := context.Background()

	if err := d.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	repo.listErr = errors.New("slot unreadable")
	if err := d.Refresh(ctx); !errors.Is(err, repo.listErr) {
		t.Fatalf("Refresh() error = %v, want %v", err, repo.listErr)
	}

	if got := d.Snippets(); len(got) != 4 {
		t.Errorf("failed refresh replaced the list: %v", titles(got))
	}
	if d.Loading() {
		t.Error("Loading() = true after a failed refresh")
	}
}

func TestDirectory_LoadingDuringRefresh(t *testing.T) {
	d, repo := newTestDirectory(t, sampleSnippets()...)
	repo.listGate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- d.Refresh(context.Background()) }()

	deadline := time.Now().Add(time.Second)
	for !d.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("Loading() never became true")
		}
		time.Sleep(time.Millisecond)
	}

	close(repo.listGate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if d.Loading() {
		t.Error("Loading() = true after refresh completed")
	}
}

func TestDirectory_Filter(t *testing.T) {
	d, _ := newTestDirectory(t, sampleSnippets()...)
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query returns everything", "", []string{"Hello World Server", "React UseEffect Hook", "Quick sort", "Main class"}},
		{"matches title case-insensitively", "HELLO", []string{"Hello World Server"}},
		{"matches language", "python", []string{"Quick sort"}},
		{"java matches javascript and java", "java", []string{"Hello World Server", "Main class"}},
		{"substring of language", "script", []string{"Hello World Server", "React UseEffect Hook"}},
		{"does not match description or code", "listen", []string{}},
		{"no match", "cobol", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(d.Filter(tt.query))
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}

	if len(d.Snippets()) != 4 {
		t.Error("Filter() mutated the cached list")
	}
}

// With only the two seed records, "java" matches the javascript one and not
// the typescript one.
func TestFilterSnippets_SeedJava(t *testing.T) {
	s := store.New(memory.New(), testLogger())
	list, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	got := FilterSnippets(list, "java")
	if len(got) != 1 || got[0].Language != model.JavaScript {
		t.Errorf("FilterSnippets(seed, java) = %v", titles(got))
	}
}

func TestFilterSnippets_ReturnsNewSlice(t *testing.T) {
	in := sampleSnippets()
	out := FilterSnippets(in, "")
	out[0].Title = "changed"

	if in[0].Title == "changed" {
		t.Error("FilterSnippets() returned a slice aliasing its input")
	}
}

func TestDirectory_Find(t *testing.T) {
	d, _ := newTestDirectory(t, sampleSnippets()...)
	_ = d.Refresh(context.Background())

	if s, ok := d.Find("c"); !ok || s.Title != "Quick sort" {
		t.Errorf("Find(c) = %+v, %v", s, ok)
	}
	if _, ok := d.Find("zzz"); ok {
		t.Error("Find(zzz) = true")
	}
}

func TestDirectory_Get(t *testing.T) {
	d, repo := newTestDirectory(t, sampleSnippets()...)
	ctx := context.Background()

	s, err := d.Get(ctx, "c")
	if err != nil {
		t.Fatalf("Get(c) error = %v", err)
	}
	if s.Title != "Quick sort" {
		t.Errorf("Get(c).Title = %q", s.Title)
	}
	if len(d.Snippets()) != 0 {
		t.Error("Get() filled the cache, it should read the store only")
	}
	if repo.listCalls != 0 {
		t.Errorf("Get() called ListAll %d times, want 0", repo.listCalls)
	}

	if _, err := d.Get(ctx, "zzz"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get(zzz) error = %v, want ErrNotFound", err)
	}
}

func TestDirectory_CreateRefreshes(t *testing.T) {
	d, repo := newTestDirectory(t, sampleSnippets()...)
	ctx := context.Background()

	created, err := d.Create(ctx, model.Draft{Title: "New", Code: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if repo.calls() != 1 {
		t.Errorf("ListAll calls = %d, want 1 refresh after create", repo.calls())
	}
	got := d.Snippets()
	if len(got) != 5 || got[0].ID != created.ID {
		t.Errorf("cache after create = %v", titles(got))
	}
}

func TestDirectory_CreateFailureDoesNotRefresh(t *testing.T) {
	d, repo := newTestDirectory(t)
	repo.createErr = errors.New("boom")

	if _, err := d.Create(context.Background(), model.Draft{Title: "t", Code: "c"}); err == nil {
		t.Fatal("Create() error = nil")
	}
	if repo.calls() != 0 {
		t.Errorf("ListAll calls = %d after failed create, want 0", repo.calls())
	}
}

// The mutation succeeded, so a failing refresh afterwards is only logged.
func TestDirectory_CreateSucceedsWhenRefreshFails(t *testing.T) {
	d, repo := newTestDirectory(t)
	repo.listErr = errors.New("flaky")

	if _, err := d.Create(context.Background(), model.Draft{Title: "t", Code: "c"}); err != nil {
		t.Errorf("Create() error = %v, want nil", err)
	}
}

func TestDirectory_DeleteRefreshes(t *testing.T) {
	d, repo := newTestDirectory(t, sampleSnippets()...)
	ctx := context.Background()
	_ = d.Refresh(ctx)

	if err := d.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if repo.calls() != 2 {
		t.Errorf("ListAll calls = %d, want 2", repo.calls())
	}
	if _, ok := d.Find("a"); ok {
		t.Error("deleted snippet still cached")
	}
	if len(d.Snippets()) != 3 {
		t.Errorf("cache size = %d, want 3", len(d.Snippets()))
	}
}

func TestDirectory_DeleteUnknownSucceeds(t *testing.T) {
	d, _ := newTestDirectory(t, sampleSnippets()...)

	if err := d.Delete(context.Background(), "nope"); err != nil {
		t.Errorf("Delete(nope) error = %v", err)
	}
	if len(d.Snippets()) != 4 {
		t.Errorf("cache size = %d, want 4", len(d.Snippets()))
	}
}

// List, create, list, delete, list against the real store.
func TestDirectory_EndToEnd(t *testing.T) {
	s := store.New(memory.New(), testLogger())
	d := NewDirectory(s, testLogger())
	ctx := context.Background()

	if err := d.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if len(d.Snippets()) != 2 {
		t.Fatalf("initial list = %v, want the 2 seeds", titles(d.Snippets()))
	}

	created, err := d.Create(ctx, model.Draft{Title: "Test", Language: model.Python, Code: "x=1", Author: "Bob"})
	if err != nil {
		t.Fatal(err)
	}
	list := d.Snippets()
	if len(list) != 3 || list[0].ID != created.ID || list[0].Author != "Bob" {
		t.Fatalf("after create = %+v", list)
	}

	if err := d.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	list = d.Snippets()
	if len(list) != 2 || list[0].ID != "1" || list[1].ID != "2" {
		t.Errorf("after delete = %v", titles(list))
	}
}
