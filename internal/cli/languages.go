package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/devhost/internal/model"
)

func (c *CLI) newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the accepted language tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, l := range model.SupportedLanguages() {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
}
