package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/devhost/internal/clipboard"
	"github.com/sakif/devhost/internal/service"
)

func (c *CLI) newCopyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a snippet's code to the clipboard",
		Long: `Copy a snippet's code to the system clipboard.

Without a clipboard (no xclip or xsel, or an SSH session) the code is
printed to stdout instead, so it can still be piped:

  devhost copy 1 | pbcopy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snippet, err := c.lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			view := service.NewSnippetView(snippet, c.app.Directory, c.clip)
			if err := view.Copy(); err != nil {
				if !errors.Is(err, clipboard.ErrUnavailable) {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "No clipboard available, printing the code instead")
				fmt.Fprint(cmd.OutOrStdout(), snippet.Code)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %q to the clipboard\n", snippet.Title)
			return nil
		},
	}
}
