package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-gitcms/internal/commands"
)

func newImportCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import Markdown files with YAML frontmatter as posts",
		Long:  "Import creates or updates one post per file. The post id derives from the slug, so re-importing a file updates the same document.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := commands.NewImportFileHandler(
				deps.Module.Importer(),
				deps.Module.Posts(),
				deps.Module.Authorization(),
			)

			for _, path := range args {
				source, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("cli: read %q: %w", path, err)
				}

				msg := commands.ImportFileCommand{
					Filename: filepath.Base(path),
					Source:   source,
				}
				if err := handler.Execute(cmd.Context(), msg); err != nil {
					return fmt.Errorf("cli: import %q: %w", path, err)
				}
				fmt.Fprintf(deps.Out, "imported %s\n", path)
			}
			return nil
		},
	}
}
