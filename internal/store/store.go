// Package store owns the persisted snippet list.
//
// The whole list lives in one repository.Slot as a JSON array, newest first.
// Every operation reads the full list, and every mutation writes the full list
// back. There is no lock across that read-modify-write: two concurrent
// mutations race and the last write wins, which may drop the other one. The
// slot has no version field to detect this.
//
// THE OPERATION SHAPE:
//
//	delay(op)  ->  read slot  ->  (seed if absent)  ->  mutate  ->  write slot
//
// The delay runs first, so a context cancelled while waiting leaves the slot
// untouched.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devhost/internal/apperror"
	"github.com/sakif/devhost/internal/model"
	"github.com/sakif/devhost/internal/repository"
)

// Repository is the snippet store as seen by the services and shells. *Store
// implements it; metrics.Repository decorates it.
type Repository interface {
	ListAll(ctx context.Context) ([]model.Snippet, error)
	GetByID(ctx context.Context, id string) (model.Snippet, error)
	Create(ctx context.Context, draft model.Draft) (model.Snippet, error)
	DeleteByID(ctx context.Context, id string) error
}

var _ Repository = (*Store)(nil)

type Store struct {
	slot          repository.Slot
	logger        *slog.Logger
	delay         Delay
	now           func() time.Time
	newID         func() string
	failOnCorrupt bool
}

type Option func(*Store)

// WithDelay sets the simulated-latency strategy. The default is NoDelay.
func WithDelay(d Delay) Option {
	return func(s *Store) {
		if d != nil {
			s.delay = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// FailOnCorrupt makes undecodable slot contents an ErrStorage failure. Without
// it the corrupt bytes are logged, discarded and replaced by the seed list.
func FailOnCorrupt(enabled bool) Option {
	return func(s *Store) { s.failOnCorrupt = enabled }
}

func New(slot repository.Slot, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		slot:   slot,
		logger: logger,
		delay:  NoDelay(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return xid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns the persisted list in stored order (newest first). The
// first call against an empty slot persists and returns the seed list.
func (s *Store) ListAll(ctx context.Context) ([]model.Snippet, error) {
	if err := s.delay(ctx, OpList); err != nil {
		return nil, err
	}
	snippets, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: listing snippets: %w", err)
	}
	return snippets, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (model.Snippet, error) {
	if err := s.delay(ctx, OpGet); err != nil {
		return model.Snippet{}, err
	}
	snippets, err := s.load(ctx)
	if err != nil {
		return model.Snippet{}, fmt.Errorf("store: getting snippet: %w", err)
	}
	for _, sn := range snippets {
		if sn.ID == id {
			return sn, nil
		}
	}
	return model.Snippet{}, apperror.NotFound("snippet", id)
}

// Create validates the draft, prepends the new record and persists the list.
// Title and code are required; description and author may be empty.
func (s *Store) Create(ctx context.Context, draft model.Draft) (model.Snippet, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return model.Snippet{}, apperror.ValidationFailed("title", "title is required")
	}
	if strings.TrimSpace(draft.Code) == "" {
		return model.Snippet{}, apperror.ValidationFailed("code", "code is required")
	}

	if err := s.delay(ctx, OpCreate); err != nil {
		return model.Snippet{}, err
	}

	snippets, err := s.load(ctx)
	if err != nil {
		return model.Snippet{}, fmt.Errorf("store: creating snippet: %w", err)
	}

	snippet := model.Snippet{
		ID:          s.newID(),
		Title:       title,
		Description: draft.Description,
		Language:    draft.Language,
		Code:        draft.Code,
		CreatedAt:   s.now(),
		Author:      draft.Author,
		Likes:       0,
	}

	updated := make([]model.Snippet, 0, len(snippets)+1)
	updated = append(updated, snippet)
	updated = append(updated, snippets...)

	if err := s.save(ctx, updated); err != nil {
		return model.Snippet{}, fmt.Errorf("store: creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("title", snippet.Title),
		slog.String("language", snippet.Language.String()),
	)
	return snippet, nil
}

// DeleteByID removes the record with the given id. Deleting an id that is not
// present is a no-op, but the list is still read (and seeded) and written.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	if err := s.delay(ctx, OpDelete); err != nil {
		return err
	}

	snippets, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("store: deleting snippet: %w", err)
	}

	kept := make([]model.Snippet, 0, len(snippets))
	for _, sn := range snippets {
		if sn.ID != id {
			kept = append(kept, sn)
		}
	}

	if err := s.save(ctx, kept); err != nil {
		return fmt.Errorf("store: deleting snippet: %w", err)
	}

	if len(kept) == len(snippets) {
		s.logger.Debug("delete of unknown snippet", slog.String("id", id))
	} else {
		s.logger.Info("snippet deleted", slog.String("id", id))
	}
	return nil
}

// load reads and decodes the slot, seeding it when absent (or corrupt, unless
// failOnCorrupt is set).
func (s *Store) load(ctx context.Context) ([]model.Snippet, error) {
	data, ok, err := s.slot.Read(ctx)
	if err != nil {
		return nil, apperror.StorageFailed("reading slot", err)
	}
	if !ok {
		return s.seed(ctx)
	}

	var snippets []model.Snippet
	if err := json.Unmarshal(data, &snippets); err != nil {
		if s.failOnCorrupt {
			return nil, apperror.StorageFailed("decoding slot", err)
		}
		s.logger.Warn("discarding corrupt snippet slot",
			slog.Int("bytes", len(data)),
			slog.String("error", err.Error()),
		)
		return s.seed(ctx)
	}
	if snippets == nil {
		// A literal null. An emptied list is stored as [] and stays empty.
		snippets = []model.Snippet{}
	}
	return snippets, nil
}

func (s *Store) seed(ctx context.Context) ([]model.Snippet, error) {
	snippets := seedSnippets(s.now())
	if err := s.save(ctx, snippets); err != nil {
		return nil, err
	}
	s.logger.Info("seeded empty snippet slot", slog.Int("count", len(snippets)))
	return snippets, nil
}

func (s *Store) save(ctx context.Context, snippets []model.Snippet) error {
	data, err := json.Marshal(snippets)
	if err != nil {
		return apperror.StorageFailed("encoding slot", err)
	}
	if err := s.slot.Write(ctx, data); err != nil {
		return apperror.StorageFailed("writing slot", err)
	}
	return nil
}
