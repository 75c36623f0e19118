package tree

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// ArchiveName is the file name the project ZIP is offered under.
const ArchiveName = "full-stack-project.zip"

// RenderText lists the tree one node per line, indented two spaces per level,
// with folders suffixed by "/".
//
//	simple-project/
//	  docker-compose.yml
//	  backend/
//	    server.js
func RenderText(root Node) string {
	var r textRenderer
	_ = Walk(root, &r)
	return r.b.String()
}

type textRenderer struct {
	b strings.Builder
}

func (r *textRenderer) line(n Node, depth int, suffix string) {
	r.b.WriteString(strings.Repeat("  ", depth))
	r.b.WriteString(n.Name)
	r.b.WriteString(suffix)
	r.b.WriteByte('\n')
}

func (r *textRenderer) VisitFile(n Node, depth int) error {
	r.line(n, depth, "")
	return nil
}

func (r *textRenderer) EnterFolder(n Node, depth int) error {
	r.line(n, depth, "/")
	return nil
}

func (r *textRenderer) LeaveFolder(Node, int) error { return nil }

// WriteZip writes the tree to w as a ZIP archive. The root folder becomes the
// top-level directory of the archive.
func WriteZip(w io.Writer, root Node) error {
	zw := zip.NewWriter(w)
	z := &zipWriter{zw: zw}
	if err := Walk(root, z); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("tree: finishing zip: %w", err)
	}
	return nil
}

type zipWriter struct {
	zw   *zip.Writer
	dirs []string
}

func (z *zipWriter) path(name string) string {
	return path.Join(append(z.dirs, name)...)
}

func (z *zipWriter) VisitFile(n Node, _ int) error {
	f, err := z.zw.Create(z.path(n.Name))
	if err != nil {
		return fmt.Errorf("tree: adding %s: %w", n.Name, err)
	}
	if _, err := io.WriteString(f, n.Content); err != nil {
		return fmt.Errorf("tree: writing %s: %w", n.Name, err)
	}
	return nil
}

func (z *zipWriter) EnterFolder(n Node, _ int) error {
	// A trailing slash marks a directory entry.
	if _, err := z.zw.Create(z.path(n.Name) + "/"); err != nil {
		return fmt.Errorf("tree: adding %s/: %w", n.Name, err)
	}
	z.dirs = append(z.dirs, n.Name)
	return nil
}

func (z *zipWriter) LeaveFolder(Node, int) error {
	z.dirs = z.dirs[:len(z.dirs)-1]
	return nil
}
