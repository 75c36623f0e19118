// Package tree models the sample project structure shown next to the snippet
// list: a small file tree that can be rendered as indented text or packed
// into a ZIP archive.
package tree

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Node is either a file (Content set, no Children) or a folder (Children
// set, no Content).
type Node struct {
	Name     string `yaml:"name" json:"name"`
	Kind     Kind   `yaml:"type" json:"type"`
	Content  string `yaml:"content,omitempty" json:"content,omitempty"`
	Children []Node `yaml:"children,omitempty" json:"children,omitempty"`
}

func File(name, content string) Node {
	return Node{Name: name, Kind: KindFile, Content: content}
}

func Folder(name string, children ...Node) Node {
	return Node{Name: name, Kind: KindFolder, Children: children}
}

func (n Node) IsFolder() bool { return n.Kind == KindFolder }

// Visitor receives the nodes of a tree in depth-first pre-order. depth is 0
// for the root. Returning an error stops the walk.
type Visitor interface {
	VisitFile(n Node, depth int) error
	EnterFolder(n Node, depth int) error
	LeaveFolder(n Node, depth int) error
}

// Walk visits root and all of its descendants, children in order.
func Walk(root Node, v Visitor) error {
	return walk(root, 0, v)
}

func walk(n Node, depth int, v Visitor) error {
	if !n.IsFolder() {
		return v.VisitFile(n, depth)
	}
	if err := v.EnterFolder(n, depth); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := walk(child, depth+1, v); err != nil {
			return err
		}
	}
	return v.LeaveFolder(n, depth)
}

// Validate checks that every node has a usable name and a known kind, and
// that files have no children.
func Validate(root Node) error {
	return Walk(root, validator{})
}

type validator struct{}

func (validator) check(n Node) error {
	switch {
	case n.Name == "" || n.Name == "." || n.Name == "..":
		return fmt.Errorf("tree: invalid node name %q", n.Name)
	case strings.ContainsAny(n.Name, `/\`):
		return fmt.Errorf("tree: node name %q contains a path separator", n.Name)
	}
	return nil
}

func (v validator) VisitFile(n Node, _ int) error {
	if n.Kind != KindFile {
		return fmt.Errorf("tree: node %q has unknown type %q", n.Name, n.Kind)
	}
	if len(n.Children) > 0 {
		return fmt.Errorf("tree: file %q has children", n.Name)
	}
	return v.check(n)
}

func (v validator) EnterFolder(n Node, _ int) error { return v.check(n) }
func (validator) LeaveFolder(Node, int) error       { return nil }
