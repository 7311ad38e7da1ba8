package main

import (
	"github.com/spf13/cobra"

	"github.com/sameershelar/toodo/internal/server"
	"github.com/sameershelar/toodo/internal/server/config"
)

// NewRootCmd creates the root command of the server binary.
func NewRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "toodo-server",
		Short: "toodo API server",
		Long: `toodo serves a todo list over HTTP and gRPC, with email/password
accounts and rotating refresh tokens.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")
	config.RegisterFlags(cmd.PersistentFlags())

	load := func(cmd *cobra.Command) (*config.Config, error) {
		return config.Load(configFile, cmd.Flags())
	}

	cmd.AddCommand(newServeCmd(load))
	cmd.AddCommand(newMigrateCmd(load))

	return cmd
}

type loadFunc func(cmd *cobra.Command) (*config.Config, error)

func newServeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			app, err := server.NewApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Run(cmd.Context())
		},
	}
}

func newMigrateCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending database migrations against the configured PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			cmd.Println("Running migrations...")
			if err := server.Migrate(cmd.Context(), cfg); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	}
}
