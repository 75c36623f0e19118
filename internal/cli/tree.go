package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/devhost/internal/tree"
)

func (c *CLI) newTreeCommand() *cobra.Command {
	var zipPath string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the sample project structure",
		Long: `Print the sample project structure, or write it as a ZIP archive.

The structure comes from structure.file in the config, or the built-in
full-stack sample when unset.

Examples:
  devhost tree
  devhost tree --zip full-stack-project.zip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if zipPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), tree.RenderText(c.app.Project))
				return nil
			}

			f, err := c.fs.Create(zipPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", zipPath, err)
			}
			if err := tree.WriteZip(f, c.app.Project); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", zipPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", zipPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&zipPath, "zip", "", "Write a ZIP archive to this path instead of printing")
	return cmd
}
