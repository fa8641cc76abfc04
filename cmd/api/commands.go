package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	appMigrations "github.com/yigit/unilink/internal/app/migrations"
	appRepos "github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/bootstrap"
	"github.com/yigit/unilink/internal/server"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "unilink",
	Short: "UniLink alumni networking API",
	Long: `UniLink serves the alumni networking REST and websocket API.

Available subcommands:
  serve   - Run the HTTP server (default)
  migrate - Apply pending database migrations
  seed    - Create the default university and its admin`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default university and its admin",
	RunE:  runSeed,
}

var migrateStatusOnly bool

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", filepath.Join("configs", "config.yaml"), "path to the YAML config file")
	migrateCmd.Flags().BoolVar(&migrateStatusOnly, "status", false, "list pending migrations without applying them")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	srv, err := server.NewServer(commandContext(cmd), cfg, lgr)
	if err != nil {
		return err
	}

	if err := srv.Run(); err != nil {
		return err
	}
	lgr.Info().Msg("Application finished gracefully.")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	pool, err := bootstrap.ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer pool.Close()

	if !migrateStatusOnly {
		return bootstrap.RunMigrations(ctx, pool, lgr)
	}

	pending, err := appMigrations.NewMigrator(pool, lgr).Pending(ctx, appMigrations.Files())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
		return nil
	}
	for _, mig := range pending {
		fmt.Fprintf(cmd.OutOrStdout(), "pending  %s\n", mig.Name)
	}
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	pool, err := bootstrap.ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer pool.Close()

	return bootstrap.SeedDefaults(ctx, cfg, appRepos.NewRepositories(pool), lgr)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
