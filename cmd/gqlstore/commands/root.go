// Package commands implements the CLI commands for gqlstore.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/gqlstore/internal/app"
	"go.trai.ch/gqlstore/internal/build"
)

// Bootstrap builds the application components for a configuration path.
type Bootstrap func(ctx context.Context, configPath string) (*app.Components, error)

// CLI represents the command line interface for gqlstore.
type CLI struct {
	boot       Bootstrap
	components *app.Components
	rootCmd    *cobra.Command
}

// New creates a new CLI instance that builds its components with boot.
func New(boot Bootstrap) *CLI {
	rootCmd := &cobra.Command{
		Use:           "gqlstore",
		Short:         "A normalizing, cache-aware GraphQL client",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", ".", "Path to gqlstore.yaml or a directory to search from")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	c := &CLI{
		boot:    boot,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newQueryCmd())
	rootCmd.AddCommand(c.newPrefetchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// Components returns the components built for the running command, if any.
func (c *CLI) Components() *app.Components {
	return c.components
}

// load builds the components for cmd on first use and applies the logging flags.
func (c *CLI) load(cmd *cobra.Command) (*app.App, error) {
	if c.components == nil {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return nil, err
		}
		components, err := c.boot(cmd.Context(), configPath)
		if err != nil {
			return nil, err
		}
		c.components = components
	}

	jsonLogs, _ := cmd.Flags().GetBool("log-json")
	if l, ok := c.components.Logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(jsonLogs)
	}
	return c.components.App, nil
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}
