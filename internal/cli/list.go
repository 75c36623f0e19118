package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (c *CLI) newListCommand() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snippets, newest first",
		Long: `List all snippets, newest first, optionally filtered.

The query matches case-insensitively against the title or the language tag.

Examples:
  devhost list
  devhost list --query react
  devhost list -q python`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Directory.Refresh(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			snippets := c.app.Directory.Filter(query)
			if len(snippets) == 0 {
				if query != "" {
					fmt.Fprintln(out, "No snippets match the query")
				} else {
					fmt.Fprintln(out, "No snippets found")
				}
				return nil
			}

			fmt.Fprintf(out, "Found %d snippet(s):\n\n", len(snippets))
			for _, s := range snippets {
				fmt.Fprintf(out, "  [%s] %s\n", s.ID, s.Title)
				fmt.Fprintf(out, "    Language: %s\n", s.Language)
				fmt.Fprintf(out, "    Author:   %s\n", s.Author)
				fmt.Fprintf(out, "    Created:  %s\n", humanize.Time(s.CreatedAt))
				fmt.Fprintf(out, "    Size:     %s\n", humanize.Bytes(uint64(len(s.Code))))
				if s.Description != "" {
					fmt.Fprintf(out, "    %s\n", s.Description)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by title or language")
	return cmd
}
