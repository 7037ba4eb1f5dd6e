package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-gitcms/internal/sitemap"
)

func newSitemapCmd(deps *Deps) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Build the sitemap XML with locale alternates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records := deps.Module.Sitemap().Build(cmd.Context())
			xml := sitemap.WriteXML(records)

			if output == "" {
				fmt.Fprint(deps.Out, xml)
				return nil
			}
			if err := os.WriteFile(output, []byte(xml), 0o644); err != nil {
				return fmt.Errorf("cli: write %q: %w", output, err)
			}
			fmt.Fprintf(deps.Out, "wrote %d records to %s\n", len(records), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the sitemap to a file instead of stdout")
	return cmd
}
