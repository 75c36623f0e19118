// Package service holds the stateful read models that sit between the snippet
// store and the presentation shells (HTTP server and CLI).
//
// THE LAYERS:
//
//	Handler / CLI        parse input, render output
//	Directory, views     cached list, filter, upload form state
//	store.Repository     the persisted list (validation, seeding, latency)
//	repository.Slot      one blob on disk, SQLite or DynamoDB
//
// Services take store.Repository, not *store.Store, so tests pass a fake and
// production can wrap the store in metrics.
package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/devhost/internal/model"
	"github.com/sakif/devhost/internal/store"
)

// Directory caches the most recent store listing and filters it.
//
// It never patches its own cache: every Create and Delete is followed by a
// full Refresh from the store. The mutex guards the cache only; it does not
// make the store's read-modify-write atomic.
type Directory struct {
	repo   store.Repository
	logger *slog.Logger

	mu       sync.RWMutex
	snippets []model.Snippet
	inflight int    // refreshes currently running; Loading reports inflight > 0
	started  uint64 // sequence number handed to the latest refresh
	applied  uint64 // sequence number of the refresh the cache came from
}

func NewDirectory(repo store.Repository, logger *slog.Logger) *Directory {
	return &Directory{
		repo:     repo,
		logger:   logger,
		snippets: []model.Snippet{},
	}
}

// Refresh reloads the cache from the store.
//
// On failure the previous list is kept and the error is logged and returned.
// The loading flag is cleared either way. When refreshes overlap, a result
// older than the one already cached is dropped.
func (d *Directory) Refresh(ctx context.Context) error {
	d.mu.Lock()
	d.inflight++
	d.started++
	seq := d.started
	d.mu.Unlock()

	snippets, err := d.repo.ListAll(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.inflight--

	if err != nil {
		d.logger.Error("failed to refresh snippet directory",
			slog.String("error", err.Error()),
		)
		return err
	}
	if seq > d.applied {
		d.snippets = snippets
		d.applied = seq
	}
	return nil
}

// Snippets returns a copy of the cached list in store order.
func (d *Directory) Snippets() []model.Snippet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneSnippets(d.snippets)
}

func (d *Directory) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.inflight > 0
}

// Filter returns the cached snippets whose title or language contains query,
// ignoring case. An empty query returns the whole list.
func (d *Directory) Filter(query string) []model.Snippet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return FilterSnippets(d.snippets, query)
}

// Find looks up a snippet in the cache.
func (d *Directory) Find(id string) (model.Snippet, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.snippets {
		if s.ID == id {
			return s, true
		}
	}
	return model.Snippet{}, false
}

// Get reads one snippet straight from the store, bypassing the cache. It
// returns an apperror.ErrNotFound error for unknown ids.
func (d *Directory) Get(ctx context.Context, id string) (model.Snippet, error) {
	snippet, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return model.Snippet{}, err
	}
	return snippet, nil
}

// Create stores the draft and refreshes the cache. A failed refresh is logged
// by Refresh and does not fail the create.
func (d *Directory) Create(ctx context.Context, draft model.Draft) (model.Snippet, error) {
	created, err := d.repo.Create(ctx, draft)
	if err != nil {
		d.logger.Error("failed to create snippet",
			slog.String("title", draft.Title),
			slog.String("error", err.Error()),
		)
		return model.Snippet{}, err
	}
	_ = d.Refresh(ctx)
	return created, nil
}

// Delete removes the snippet from the store and refreshes the cache. Deleting
// an unknown id succeeds.
func (d *Directory) Delete(ctx context.Context, id string) error {
	if err := d.repo.DeleteByID(ctx, id); err != nil {
		d.logger.Error("failed to delete snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return err
	}
	_ = d.Refresh(ctx)
	return nil
}

// FilterSnippets is the filter used by Directory.Filter. It never modifies
// snippets and always returns a new slice.
func FilterSnippets(snippets []model.Snippet, query string) []model.Snippet {
	if query == "" {
		return cloneSnippets(snippets)
	}
	q := strings.ToLower(query)
	out := make([]model.Snippet, 0, len(snippets))
	for _, s := range snippets {
		if strings.Contains(strings.ToLower(s.Title), q) ||
			strings.Contains(strings.ToLower(string(s.Language)), q) {
			out = append(out, s)
		}
	}
	return out
}

func cloneSnippets(in []model.Snippet) []model.Snippet {
	out := make([]model.Snippet, len(in))
	copy(out, in)
	return out
}
