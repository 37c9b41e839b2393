package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/gqlstore/internal/app"
	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newPrefetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefetch [documents...]",
		Short: "Run several operations concurrently and report what was cached",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			rawPolicy, _ := cmd.Flags().GetString("policy")
			policy, err := domain.ParseCachePolicy(rawPolicy)
			if err != nil {
				return err
			}

			inputs := make([]app.QueryInput, 0, len(args))
			for _, path := range args {
				//nolint:gosec // Path is provided by the user on purpose
				data, err := os.ReadFile(path)
				if err != nil {
					return zerr.With(zerr.Wrap(err, "failed to read document"), "path", path)
				}
				inputs = append(inputs, app.QueryInput{Name: path, Document: string(data), Policy: policy})
			}

			a, err := c.load(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.Prefetch(cmd.Context(), inputs); err != nil {
				return err
			}

			stats := a.Stats()
			out := cmd.OutOrStdout()
			for _, name := range stats.ModelNames() {
				_, _ = fmt.Fprintf(out, "%s\t%d\n", name, stats.Entities[name])
			}
			_, _ = fmt.Fprintf(out, "cached responses\t%d\n", stats.CachedResponses)
			return nil
		},
	}
	cmd.Flags().String("policy", "", "Storing cache policy (cache-first, network-only, cache-and-network)")
	return cmd
}
