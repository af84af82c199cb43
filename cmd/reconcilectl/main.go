package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts clientOptions

	root := &cobra.Command{
		Use:          "reconcilectl",
		Short:        "Operator tool for order reconciliation and refunds",
		Version:      Version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.baseURL, "api", envOr("RECONCILECTL_API", "http://localhost:8080"), "Admin API address")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("RECONCILECTL_TOKEN"), "Operator token")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "Request timeout")

	root.AddCommand(loginCmd(&opts))
	root.AddCommand(showCmd(&opts))
	root.AddCommand(refreshCmd(&opts))
	root.AddCommand(refundCmd(&opts))
	root.AddCommand(overrideCmd(&opts))
	root.AddCommand(refillCmd(&opts))
	root.AddCommand(balanceCmd(&opts))

	return root
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
