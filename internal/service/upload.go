package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/devhost/internal/apperror"
	"github.com/sakif/devhost/internal/model"
)

var (
	ErrFormClosed       = errors.New("upload form is closed")
	ErrSubmitInProgress = errors.New("upload already in progress")
)

// FormState is the state of the upload modal.
//
//	Closed -> Open -> Submitting -> Closed   (success, draft reset)
//	                             -> Open     (failure, draft kept)
type FormState int

const (
	FormClosed FormState = iota
	FormOpen
	FormSubmitting
)

func (s FormState) String() string {
	switch s {
	case FormClosed:
		return "closed"
	case FormOpen:
		return "open"
	case FormSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("FormState(%d)", int(s))
	}
}

// Field names accepted by UploadForm.Set.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldLanguage    = "language"
	FieldCode        = "code"
	FieldAuthor      = "author"
)

type snippetCreator interface {
	Create(ctx context.Context, draft model.Draft) (model.Snippet, error)
}

// UploadForm holds the draft of a new snippet and the modal state around it.
type UploadForm struct {
	creator snippetCreator
	logger  *slog.Logger

	mu    sync.Mutex
	state FormState
	draft model.Draft
}

func NewUploadForm(creator snippetCreator, logger *slog.Logger) *UploadForm {
	return &UploadForm{
		creator: creator,
		logger:  logger,
		draft:   model.NewDraft(),
	}
}

func (f *UploadForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *UploadForm) Draft() model.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Open shows the form. Opening an open form does nothing.
func (f *UploadForm) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case FormSubmitting:
		return ErrSubmitInProgress
	default:
		f.state = FormOpen
		return nil
	}
}

// Close hides the form. The draft is kept for the next Open.
func (f *UploadForm) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return ErrSubmitInProgress
	}
	f.state = FormClosed
	return nil
}

// Set changes one draft field. Only an open form accepts edits, and language
// must be one of model.SupportedLanguages.
func (f *UploadForm) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case FormClosed:
		return ErrFormClosed
	case FormSubmitting:
		return ErrSubmitInProgress
	}

	switch field {
	case FieldTitle:
		f.draft.Title = value
	case FieldDescription:
		f.draft.Description = value
	case FieldCode:
		f.draft.Code = value
	case FieldAuthor:
		f.draft.Author = value
	case FieldLanguage:
		if !model.IsSupportedLanguage(value) {
			return apperror.ValidationFailed(FieldLanguage, fmt.Sprintf("unsupported language %q", value))
		}
		f.draft.Language = model.Language(value)
	default:
		return apperror.ValidationFailed(field, fmt.Sprintf("unknown field %q", field))
	}
	return nil
}

// Submit creates a snippet from the draft. On success the draft is reset to
// the defaults and the form closes. On failure the form reopens with the
// draft untouched; the error is logged and returned, never retried.
func (f *UploadForm) Submit(ctx context.Context) (model.Snippet, error) {
	f.mu.Lock()
	switch f.state {
	case FormClosed:
		f.mu.Unlock()
		return model.Snippet{}, ErrFormClosed
	case FormSubmitting:
		f.mu.Unlock()
		return model.Snippet{}, ErrSubmitInProgress
	}
	f.state = FormSubmitting
	draft := f.draft
	f.mu.Unlock()

	created, err := f.creator.Create(ctx, draft)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = FormOpen
		f.logger.Error("snippet upload failed",
			slog.String("title", draft.Title),
			slog.String("error", err.Error()),
		)
		return model.Snippet{}, err
	}

	f.state = FormClosed
	f.draft = model.NewDraft()
	return created, nil
}
