package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/devhost/internal/service"
)

func (c *CLI) newRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a snippet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snippet, err := c.lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			view := service.NewSnippetView(snippet, c.app.Directory, c.clip)
			if err := view.Delete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted snippet %s: %s\n", snippet.ID, snippet.Title)
			return nil
		},
	}
}
