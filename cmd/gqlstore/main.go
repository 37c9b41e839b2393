// Package main is the entry point for the gqlstore CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/gqlstore/cmd/gqlstore/commands"
	"go.trai.ch/gqlstore/internal/adapters/config"
	"go.trai.ch/gqlstore/internal/app"
	_ "go.trai.ch/gqlstore/internal/wiring"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Interface - CLI. Components are built once the config flag is known.
	cli := commands.New(bootstrap)
	cli.SetArgs(args)

	// 2. Execution
	if err := cli.Execute(ctx); err != nil {
		if components := cli.Components(); components != nil {
			components.Logger.Error(err)
			return 1
		}
		// Logger is not available yet if initialization failed
		// Write directly to stderr
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	return 0
}

// bootstrap resolves the application graph for the configuration found at configPath.
func bootstrap(ctx context.Context, configPath string) (*app.Components, error) {
	components, _, err := graft.ExecuteFor[*app.Components](config.WithPath(ctx, configPath))
	if err != nil {
		return nil, err
	}
	return components, nil
}
