package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/devhost/internal/service"
)

func (c *CLI) newDownloadCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Save a snippet's code to a file",
		Long: `Save a snippet's code to a file named after its title and language,
e.g. "Hello World Server" in javascript becomes Hello_World_Server.js.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snippet, err := c.lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			view := service.NewSnippetView(snippet, c.app.Directory, c.clip)
			path, err := view.Save(c.fs, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to save into")
	return cmd
}
