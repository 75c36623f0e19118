package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/devhost/internal/apperror"
	"github.com/sakif/devhost/internal/model"
	"github.com/sakif/devhost/internal/service"
)

// maxDraftBytes caps the JSON body of a create request.
const maxDraftBytes = 1 << 20

// SnippetHandler serves the JSON API over the snippet directory.
//
// Every read refreshes the directory first, the same way a page load does, so
// responses reflect what other processes wrote to the slot.
type SnippetHandler struct {
	directory *service.Directory
	logger    *slog.Logger
}

func NewSnippetHandler(directory *service.Directory, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{directory: directory, logger: logger}
}

// HandleList handles GET /api/snippets?q=
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.directory.Filter(r.URL.Query().Get("q")))
}

// HandleGetByID handles GET /api/snippets/{id}. It reads the store directly
// instead of refreshing the whole list.
func (h *SnippetHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.directory.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleCreate handles POST /api/snippets. Fields missing from the body keep
// the upload form defaults (language javascript, author Anonymous).
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	draft := model.NewDraft()
	r.Body = http.MaxBytesReader(w, r.Body, maxDraftBytes)
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	created, err := submitDraft(r, h.directory, h.logger, draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleDelete handles DELETE /api/snippets/{id}. Unknown ids are a no-op, so
// the answer is 204 either way.
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.directory.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDownload handles GET /api/snippets/{id}/download
func (h *SnippetHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// The browser copies to its own clipboard, so the view gets none.
	view := service.NewSnippetView(snippet, h.directory, nil)
	name, content := view.Download()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", fmt.Sprint(len(content)))
	if _, err := w.Write(content); err != nil {
		h.logger.Warn("download interrupted", slog.String("id", snippet.ID), slog.String("error", err.Error()))
	}
}

// HandleLanguages handles GET /api/languages
func (h *SnippetHandler) HandleLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.SupportedLanguages())
}

func (h *SnippetHandler) lookup(r *http.Request) (model.Snippet, error) {
	id := chi.URLParam(r, "id")
	if err := h.directory.Refresh(r.Context()); err != nil {
		return model.Snippet{}, err
	}
	snippet, ok := h.directory.Find(id)
	if !ok {
		return model.Snippet{}, apperror.NotFound("snippet", id)
	}
	return snippet, nil
}

// submitDraft runs draft through a fresh upload form, so HTTP uploads get the
// same language check as the form. The form lives for one request.
func submitDraft(r *http.Request, directory *service.Directory, logger *slog.Logger, draft model.Draft) (model.Snippet, error) {
	form := service.NewUploadForm(directory, logger)
	if err := form.Open(); err != nil {
		return model.Snippet{}, err
	}
	fields := []struct{ name, value string }{
		{service.FieldTitle, draft.Title},
		{service.FieldDescription, draft.Description},
		{service.FieldLanguage, string(draft.Language)},
		{service.FieldCode, draft.Code},
		{service.FieldAuthor, draft.Author},
	}
	for _, f := range fields {
		if err := form.Set(f.name, f.value); err != nil {
			return model.Snippet{}, err
		}
	}
	return form.Submit(r.Context())
}
