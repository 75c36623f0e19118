package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sakif/devhost/internal/model"
	"github.com/sakif/devhost/internal/service"
)

func (c *CLI) newAddCommand() *cobra.Command {
	var (
		title       string
		description string
		language    string
		code        string
		file        string
		author      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Upload a new snippet",
		Long: `Upload a new snippet. The code comes from --code or from a file.

Examples:
  devhost add --title "Hello" --code "console.log('hi')"
  devhost add --title "Query users" --language sql --file users.sql --author Ann`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if code != "" && file != "" {
				return errors.New("use either --code or --file, not both")
			}
			if file != "" {
				data, err := afero.ReadFile(c.fs, file)
				if err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
				code = string(data)
			}

			form := service.NewUploadForm(c.app.Directory, c.app.Logger)
			if err := form.Open(); err != nil {
				return err
			}
			fields := []struct{ name, value string }{
				{service.FieldTitle, title},
				{service.FieldDescription, description},
				{service.FieldLanguage, language},
				{service.FieldCode, code},
				{service.FieldAuthor, author},
			}
			for _, f := range fields {
				if err := form.Set(f.name, f.value); err != nil {
					return err
				}
			}

			created, err := form.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created snippet %s: %s\n", created.ID, created.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Snippet title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Short description")
	cmd.Flags().StringVar(&language, "language", string(model.JavaScript), "Language tag (see 'devhost languages')")
	cmd.Flags().StringVar(&code, "code", "", "Code to upload")
	cmd.Flags().StringVar(&file, "file", "", "Read the code from this file")
	cmd.Flags().StringVar(&author, "author", model.DefaultAuthor, "Author name")
	return cmd
}
