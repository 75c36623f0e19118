// Package model defines the data structures used throughout the application.
//
// The JSON tags are the persisted format: the whole snippet list is stored as
// one JSON array in a single slot, so renaming a tag breaks every slot written
// before the rename.
package model

import (
	"regexp"
	"time"
)

// DefaultAuthor is the placeholder author of a fresh draft.
const DefaultAuthor = "Anonymous"

// Snippet is a stored unit of code with its metadata.
//
// Records are immutable once created: there is no update operation, only
// create and delete. Likes is carried for display and is never incremented.
type Snippet struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Language    Language  `json:"language"`
	Code        string    `json:"code"`
	CreatedAt   time.Time `json:"createdAt"`
	Author      string    `json:"author"`
	Likes       int       `json:"likes"`
}

// Draft is a not-yet-persisted creation payload. The store assigns ID,
// CreatedAt and Likes.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Language    Language `json:"language"`
	Code        string   `json:"code"`
	Author      string   `json:"author"`
}

// NewDraft returns a draft holding the upload form defaults.
func NewDraft() Draft {
	return Draft{
		Language: JavaScript,
		Author:   DefaultAuthor,
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// DownloadName is the file name a snippet is saved under: the title with every
// whitespace run collapsed to "_", plus an extension derived from the language.
//
//	DownloadName(Snippet{Title: "Hello World Server", Language: "javascript"}) == "Hello_World_Server.js"
func DownloadName(s Snippet) string {
	return whitespaceRun.ReplaceAllString(s.Title, "_") + "." + s.Language.Extension()
}
