package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-gitcms/internal/commands"
)

func newDeleteCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("cli: invalid post id %q: %w", args[0], err)
			}

			handler := commands.NewDeletePostHandler(deps.Module.Posts(), deps.Module.Authorization())
			if err := handler.Execute(cmd.Context(), commands.DeletePostCommand{ID: id}); err != nil {
				return err
			}

			fmt.Fprintf(deps.Out, "deleted %s\n", id)
			return nil
		},
	}
}
