// Command client is an interactive terminal client for the toodo server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sameershelar/toodo/internal/client/cli"
	"github.com/sameershelar/toodo/internal/client/client"
)

func newRootCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:          "toodo",
		Short:        "Interactive toodo client",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client.NewGRPCClient(server)
			if err != nil {
				return fmt.Errorf("connect to %s: %w", server, err)
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			cli.NewApp(c, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
			if c.LoggedIn() {
				_ = c.Logout(context.Background())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&server, "server", "s", "localhost:50051", "toodo gRPC server address")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
