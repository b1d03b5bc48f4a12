package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "phishguard",
		Short:         "phishguard: URL phishing risk scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("PHISHGUARD_CONFIG"), "Path to YAML config file")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newAnalyzeCmd(&configPath))

	return cmd
}
