package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sakif/devhost/internal/apperror"
	"github.com/sakif/devhost/internal/model"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// mockSnippetRepo implements store.Repository over a plain slice, newest
// first, and counts calls so tests can check the refresh-after-mutation rule.
// Setting listErr, createErr or deleteErr makes the matching call fail.

type mockSnippetRepo struct {
	mu        sync.Mutex
	snippets  []model.Snippet
	nextID    int
	listCalls int

	listErr   error
	createErr error
	deleteErr error

	// listGate, when set, blocks ListAll until it is closed.
	listGate chan struct{}
}

func newMockRepo(snippets ...model.Snippet) *mockSnippetRepo {
	return &mockSnippetRepo{snippets: snippets}
}

func (m *mockSnippetRepo) ListAll(context.Context) ([]model.Snippet, error) {
	if m.listGate != nil {
		<-m.listGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Snippet, len(m.snippets))
	copy(out, m.snippets)
	return out, nil
}

func (m *mockSnippetRepo) GetByID(_ context.Context, id string) (model.Snippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.snippets {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Snippet{}, apperror.NotFound("snippet", id)
}

func (m *mockSnippetRepo) Create(_ context.Context, d model.Draft) (model.Snippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return model.Snippet{}, m.createErr
	}
	m.nextID++
	s := model.Snippet{
		ID:          fmt.Sprintf("mock-%d", m.nextID),
		Title:       d.Title,
		Description: d.Description,
		Language:    d.Language,
		Code:        d.Code,
		Author:      d.Author,
		CreatedAt:   time.Now(),
	}
	m.snippets = append([]model.Snippet{s}, m.snippets...)
	return s, nil
}

func (m *mockSnippetRepo) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	kept := m.snippets[:0:0]
	for _, s := range m.snippets {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.snippets = kept
	return nil
}

func (m *mockSnippetRepo) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleSnippets() []model.Snippet {
	return []model.Snippet{
		{ID: "a", Title: "Hello World Server", Language: model.JavaScript, Code: "app.listen()"},
		{ID: "b", Title: "React UseEffect Hook", Language: model.TypeScript, Code: "useEffect()"},
		{ID: "c", Title: "Quick sort", Language: model.Python, Code: "def qs(): pass"},
		{ID: "d", Title: "Main class", Language: model.Java, Code: "class Main {}"},
	}
}

func newTestDirectory(t *testing.T, snippets ...model.Snippet) (*Directory, *mockSnippetRepo) {
	t.Helper()
	repo := newMockRepo(snippets...)
	return NewDirectory(repo, testLogger()), repo
}

func titles(snippets []model.Snippet) []string {
	out := make([]string, len(snippets))
	for i, s := range snippets {
		out[i] = s.Title
	}
	return out
}
