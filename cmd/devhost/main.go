// Package main is the entry point for the devhost command line.
//
// All commands live in internal/cli; see `devhost --help`.
package main

import "github.com/sakif/devhost/internal/cli"

func main() {
	cli.Execute()
}
