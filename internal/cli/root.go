package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The configuration file is loaded before any subcommand runs, so commands
// can rely on c.Config() and on the configured grid width. The logger is
// attached to the command context and reachable through loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Bentogrid lays out bento-style card pages",
		Long:         `Bentogrid arranges cards on a fixed-width grid with separate desktop and mobile layouts. It settles overlapping cards, places new ones, mirrors layouts between viewports and stores pages locally or in MongoDB.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.Config(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/bentogrid/config.toml)")

	root.AddCommand(c.settleCommand())
	root.AddCommand(c.compactCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.colorCommand())
	root.AddCommand(c.mirrorCommand())
	root.AddCommand(c.dragCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.cardsCommand())
	root.AddCommand(c.pullCommand())
	root.AddCommand(c.pushCommand())
	root.AddCommand(c.pagesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
