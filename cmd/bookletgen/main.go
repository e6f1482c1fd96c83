package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/bookletgen/internal/cli"
	"codeberg.org/snonux/bookletgen/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command with the subcommand implementations
	rootCmd := cli.CreateRootCommand(flags, cli.Handlers{
		Generate: func(ctx context.Context, f *cli.Flags) error {
			return processor.NewProcessor(f).Generate(ctx)
		},
		Translate: func(ctx context.Context, f *cli.Flags) error {
			return processor.NewProcessor(f).Translate(ctx)
		},
		Assign: func(ctx context.Context, f *cli.Flags) error {
			return processor.NewProcessor(f).Assign(ctx)
		},
		Responses: func(ctx context.Context, f *cli.Flags) error {
			return processor.NewProcessor(f).Responses(ctx)
		},
		Models: func(ctx context.Context, f *cli.Flags) error {
			return processor.NewProcessor(f).Models(ctx)
		},
	})

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Ctrl-C stops a translation run after the current question
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
