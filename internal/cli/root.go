// Package cli assembles the admin command surface. Commands are created by
// factory functions sharing a Deps instance, so tests can substitute the
// module and output stream.
package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	gitcms "github.com/goliatone/go-gitcms"
)

// Version is the build-time version. Override with:
//
//	-ldflags "-X github.com/goliatone/go-gitcms/internal/cli.Version=v1.2.3"
var Version = "dev"

// Deps carries the shared dependencies commands execute against.
type Deps struct {
	// Module is constructed from the config file in the root PreRun unless a
	// test injected one.
	Module *gitcms.Module
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer

	cfgFile string
}

// NewRootCmd builds the root command and wires up subcommands via factory
// functions.
func NewRootCmd(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = &Deps{}
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}

	root := &cobra.Command{
		Use:           "gitcms",
		Short:         "gitcms — git-backed content store admin",
		Long:          "gitcms manages posts, site metadata, and translations stored as JSON documents in a git repository.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if deps.Module != nil {
				return nil
			}
			// Bare root and help runs need no module.
			if cmd.Name() == "gitcms" || cmd.Name() == "help" {
				return nil
			}
			if deps.cfgFile == "" {
				return errors.New("cli: --config is required")
			}
			cfg, err := LoadConfig(deps.cfgFile)
			if err != nil {
				return err
			}
			module, err := gitcms.New(cfg)
			if err != nil {
				return err
			}
			deps.Module = module
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&deps.cfgFile, "config", "c", "", "path to the yaml configuration file")
	root.SetOut(deps.Out)

	root.AddCommand(
		newListCmd(deps),
		newGetCmd(deps),
		newDeleteCmd(deps),
		newImportCmd(deps),
		newSitemapCmd(deps),
	)

	return root
}
