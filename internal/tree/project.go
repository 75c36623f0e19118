package tree

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultProject is the sample full-stack layout: a compose file wiring a
// Node backend and an nginx-served frontend.
func DefaultProject() Node {
	return Folder("simple-project",
		File("docker-compose.yml", "version: \"3.8\"\nservices:\n  web:\n    build: ./frontend\n    ports: [\"3000:80\"]\n  api:\n    build: ./backend\n    ports: [\"5000:5000\"]"),
		Folder("backend",
			File("server.js", `console.log("Server running");`),
			File("package.json", "{}"),
			File("Dockerfile", "FROM node:18\nWORKDIR /app\nCOPY . .\nCMD [\"node\", \"server.js\"]"),
		),
		Folder("frontend",
			File("index.html", "<html><body>Hello</body></html>"),
			Folder("src",
				File("App.js", "// React App"),
			),
			File("Dockerfile", "FROM nginx\nCOPY . /usr/share/nginx/html"),
		),
	)
}

// LoadYAML decodes and validates a tree, for example:
//
//	name: my-project
//	type: folder
//	children:
//	  - name: README.md
//	    type: file
//	    content: "# hi"
func LoadYAML(r io.Reader) (Node, error) {
	var root Node
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil {
		return Node{}, fmt.Errorf("tree: decoding yaml: %w", err)
	}
	if err := Validate(root); err != nil {
		return Node{}, err
	}
	return root, nil
}

// Load returns the tree from the YAML file at path, or DefaultProject when
// path is empty.
func Load(fsys afero.Fs, path string) (Node, error) {
	if path == "" {
		return DefaultProject(), nil
	}
	f, err := fsys.Open(path)
	if err != nil {
		return Node{}, fmt.Errorf("tree: opening %s: %w", path, err)
	}
	defer f.Close()
	return LoadYAML(f)
}
