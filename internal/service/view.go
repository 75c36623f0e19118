package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/sakif/devhost/internal/apperror"
	"github.com/sakif/devhost/internal/clipboard"
	"github.com/sakif/devhost/internal/model"
)

// snippetDeleter is the part of Directory a detail view needs.
type snippetDeleter interface {
	Delete(ctx context.Context, id string) error
}

// SnippetView is the detail view of one snippet. Snippets are immutable, so
// the view offers copy, download and delete but no edit.
type SnippetView struct {
	snippet   model.Snippet
	directory snippetDeleter
	clipboard clipboard.Writer
}

func NewSnippetView(snippet model.Snippet, directory snippetDeleter, clip clipboard.Writer) *SnippetView {
	return &SnippetView{
		snippet:   snippet,
		directory: directory,
		clipboard: clip,
	}
}

func (v *SnippetView) Snippet() model.Snippet {
	return v.snippet
}

// Copy puts the code on the clipboard exactly as stored.
func (v *SnippetView) Copy() error {
	return v.clipboard.WriteText(v.snippet.Code)
}

// Download returns the file name and contents a browser download would use.
func (v *SnippetView) Download() (string, []byte) {
	return model.DownloadName(v.snippet), []byte(v.snippet.Code)
}

// Save writes the download into dir on fsys and returns the file path. An
// existing file with the same name is replaced. Path separators in the title
// become "_", so the file always lands directly in dir.
func (v *SnippetView) Save(fsys afero.Fs, dir string) (string, error) {
	name, content := v.Download()
	name = localFileName(name)
	if name == "" {
		return "", apperror.ValidationFailed("title", fmt.Sprintf("cannot save snippet %s: no usable file name", v.snippet.ID))
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("saving snippet: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := afero.WriteFile(fsys, path, content, 0o644); err != nil {
		return "", fmt.Errorf("saving snippet: %w", err)
	}
	return path, nil
}

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// localFileName reduces name to a single path element. It returns "" for
// names that would still resolve outside the directory.
func localFileName(name string) string {
	name = filepath.Base(pathSeparators.Replace(name))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

// Delete removes the snippet through the directory. The caller drops its
// selection afterwards; the view must not be used again.
func (v *SnippetView) Delete(ctx context.Context) error {
	return v.directory.Delete(ctx, v.snippet.ID)
}
