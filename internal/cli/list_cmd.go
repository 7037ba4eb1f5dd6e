package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(deps *Deps) *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := deps.Module.Posts().List(cmd.Context())
			if err != nil {
				return err
			}

			resolver := deps.Module.Resolver()
			if locale == "" {
				locale = resolver.DefaultLocale()
			}

			for _, post := range posts {
				url, err := resolver.URLFor(post, locale)
				if err != nil {
					return err
				}
				fmt.Fprintf(deps.Out, "%s\t%s\t%s\t%s\n",
					post.ID,
					post.PublishedAt.Format("2006-01-02"),
					resolver.DisplayTitle(post, locale),
					url,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&locale, "locale", "l", "", "locale to render titles and urls in")
	return cmd
}
