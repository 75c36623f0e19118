package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (c *CLI) newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a snippet and its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snippet, err := c.app.Directory.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, snippet.Title)
			if snippet.Description != "" {
				fmt.Fprintln(out, snippet.Description)
			}
			fmt.Fprintf(out, "%s · %s · %s · %d likes\n",
				snippet.Language, snippet.Author, humanize.Time(snippet.CreatedAt), snippet.Likes)
			fmt.Fprintln(out)
			fmt.Fprint(out, snippet.Code)
			if !strings.HasSuffix(snippet.Code, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
