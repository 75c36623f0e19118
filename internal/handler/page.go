package handler

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/sakif/devhost/internal/apperror"
	"github.com/sakif/devhost/internal/model"
	"github.com/sakif/devhost/internal/service"
	"github.com/sakif/devhost/internal/tree"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	themeCookie  = "theme"
	themeDark    = "dark"
	themeLight   = "light"
	defaultTitle = "BuildStack.dev"
)

var templateFuncs = template.FuncMap{
	"since": func(t time.Time) string { return humanize.Time(t) },
	"size":  func(code string) string { return humanize.Bytes(uint64(len(code))) },
}

// PageHandler renders the HTML pages: the landing page with the snippet list,
// search and upload form, and the snippet detail page.
type PageHandler struct {
	index     *template.Template
	detail    *template.Template
	directory *service.Directory
	structure string
	logger    *slog.Logger
}

// pageData is what the templates see.
type pageData struct {
	Title      string
	Theme      string
	Error      string
	Query      string
	Snippets   []model.Snippet
	Snippet    *model.Snippet
	Structure  string
	Languages  []model.Language
	Draft      model.Draft
	UploadOpen bool
}

func NewPageHandler(directory *service.Directory, project tree.Node, logger *slog.Logger) (*PageHandler, error) {
	parse := func(page string) (*template.Template, error) {
		return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", "templates/"+page)
	}
	index, err := parse("index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}
	detail, err := parse("detail.html")
	if err != nil {
		return nil, fmt.Errorf("parsing detail template: %w", err)
	}
	return &PageHandler{
		index:     index,
		detail:    detail,
		directory: directory,
		structure: tree.RenderText(project),
		logger:    logger,
	}, nil
}

func (h *PageHandler) newPageData(r *http.Request) pageData {
	return pageData{
		Title:     defaultTitle,
		Theme:     themeFrom(r),
		Structure: h.structure,
		Languages: model.SupportedLanguages(),
		Draft:     model.NewDraft(),
	}
}

// HandleIndex handles GET /. A failed refresh still renders the last cached
// list, with a banner.
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(r)
	data.Query = r.URL.Query().Get("q")
	data.UploadOpen = r.URL.Query().Get("upload") != ""

	if err := h.directory.Refresh(r.Context()); err != nil {
		data.Error = "Could not load snippets. Showing the last known list."
	}
	data.Snippets = h.directory.Filter(data.Query)

	h.render(w, h.index, http.StatusOK, data)
}

// HandleDetail handles GET /snippets/{id}
func (h *PageHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(r)
	id := chi.URLParam(r, "id")

	if err := h.directory.Refresh(r.Context()); err != nil {
		data.Error = "Could not load snippets. Showing the last known list."
	}

	status := http.StatusOK
	if snippet, ok := h.directory.Find(id); ok {
		data.Title = snippet.Title + " | " + defaultTitle
		data.Snippet = &snippet
	} else {
		status = http.StatusNotFound
	}
	h.render(w, h.detail, status, data)
}

// HandleUpload handles the upload form POST /snippets. On success it
// redirects to the new snippet; on failure the form is shown again with the
// draft filled in.
func (h *PageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	draft := model.Draft{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		Language:    model.Language(r.PostForm.Get("language")),
		Code:        r.PostForm.Get("code"),
		Author:      r.PostForm.Get("author"),
	}
	if draft.Language == "" {
		draft.Language = model.JavaScript
	}
	if draft.Author == "" {
		draft.Author = model.DefaultAuthor
	}

	created, err := submitDraft(r, h.directory, h.logger, draft)
	if err == nil {
		http.Redirect(w, r, "/snippets/"+created.ID, http.StatusSeeOther)
		return
	}

	status, _ := errorStatus(err)
	data := h.newPageData(r)
	data.UploadOpen = true
	data.Draft = draft
	data.Snippets = h.directory.Snippets()
	data.Error = "Upload failed."
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation) {
		data.Error = "Upload failed: " + appErr.Message
	}
	h.render(w, h.index, status, data)
}

// HandleDelete handles POST /snippets/{id}/delete from the detail page.
func (h *PageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view := service.NewSnippetView(model.Snippet{ID: id}, h.directory, nil)
	if err := view.Delete(r.Context()); err != nil {
		status, _ := errorStatus(err)
		http.Error(w, "Could not delete snippet", status)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleToggleTheme handles POST /theme. The choice is kept in a cookie for
// a year.
func (h *PageHandler) HandleToggleTheme(w http.ResponseWriter, r *http.Request) {
	next := themeLight
	if themeFrom(r) == themeLight {
		next = themeDark
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, localRedirect(r.Referer()), http.StatusSeeOther)
}

// localRedirect keeps only the path and query of referer, and falls back to
// "/" for anything a browser could read as another host ("//host", "/\host").
func localRedirect(referer string) string {
	ref, err := url.Parse(referer)
	if err != nil || !strings.HasPrefix(ref.Path, "/") {
		return "/"
	}
	if len(ref.Path) > 1 && (ref.Path[1] == '/' || ref.Path[1] == '\\') {
		return "/"
	}
	target := ref.Path
	if ref.RawQuery != "" {
		target += "?" + ref.RawQuery
	}
	return target
}

func themeFrom(r *http.Request) string {
	c, err := r.Cookie(themeCookie)
	if err == nil && c.Value == themeLight {
		return themeLight
	}
	return themeDark
}

func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
	}
}
