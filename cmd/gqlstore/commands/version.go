package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/gqlstore/internal/build"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "gqlstore version %s\n", build.Version)
		},
	}
}
