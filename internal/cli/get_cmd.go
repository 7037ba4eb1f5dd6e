package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-gitcms/internal/blog"
)

func newGetCmd(deps *Deps) *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "get <id|slug>",
		Short: "Print one post as JSON, looked up by id or by slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			posts := deps.Module.Posts()
			if locale == "" {
				locale = deps.Module.Resolver().DefaultLocale()
			}

			var (
				post *blog.Post
				err  error
			)
			if id, parseErr := uuid.Parse(args[0]); parseErr == nil {
				post, err = posts.GetByID(cmd.Context(), id)
			} else {
				post, err = posts.GetBySlug(cmd.Context(), args[0], locale)
			}
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(post, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Out, string(encoded))
			return nil
		},
	}

	cmd.Flags().StringVarP(&locale, "locale", "l", "", "locale for slug lookup")
	return cmd
}
