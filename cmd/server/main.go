package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"mcpanel/internal/api"
	"mcpanel/internal/app"
	"mcpanel/internal/config"
	"mcpanel/internal/logger"

	"github.com/spf13/cobra"
)

const (
	janitorInterval = 10 * time.Minute
	shutdownTimeout = 90 * time.Second
)

func main() {
	var configDir string

	rootCmd := &cobra.Command{
		Use:   "mcpanel-server",
		Short: "Minecraft server management daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configDir)
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVar(&configDir, "config-dir", "", "Directory holding config, database and servers (defaults to the user config directory)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configDir string) error {
	if configDir == "" {
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("error getting user config directory: %w", err)
		}
		configDir = filepath.Join(userConfigDir, config.AppName())
	}

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	log, err := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	log.Info("Starting daemon", "config_dir", configDir)
	log.Info("Using database", "path", cfg.DatabasePath)
	log.Info("Using servers directory", "path", cfg.ServersPath)
	log.Info("Serving web client", "path", cfg.StaticPath)

	container, err := app.Build(cfg, config.LoadOrGenerateSecret(configDir), log)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go container.Auth.RunJanitor(ctx, janitorInterval)

	apiServer := api.NewAPIServer(container)
	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	container.Supervisor.Autostart()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("API error", "error", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	container.Supervisor.StopAll(shutdownCtx)
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", "error", err)
	}

	log.Info("Daemon stopped")
	return nil
}
