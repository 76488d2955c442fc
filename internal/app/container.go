package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"mcpanel/internal/auth"
	"mcpanel/internal/config"
	"mcpanel/internal/events"
	"mcpanel/internal/jvm"
	"mcpanel/internal/loader"
	"mcpanel/internal/runner"
	"mcpanel/internal/server"
	"mcpanel/internal/storage"
	"mcpanel/internal/ws"
)

type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	Store         *storage.GormStore
	Auth          *auth.Service
	Java          *jvm.Manager
	Hub           *ws.Hub
	Notifier      *events.Notifier
	Catalog       *loader.Catalog
	Supervisor    *runner.Supervisor
	ServerManager *server.Manager
}

// Build wires every component from cfg. secret signs bearer tokens.
func Build(cfg *config.Config, secret string, log *slog.Logger) (*Container, error) {
	if err := os.MkdirAll(cfg.ServersPath, 0755); err != nil {
		return nil, fmt.Errorf("could not create directory '%s': %w", cfg.ServersPath, err)
	}

	store, err := storage.NewGormStore(cfg.DatabasePath, log)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	java := jvm.NewManager(cfg.JavaPath, cfg.RuntimesPath, nil, log)
	if cfg.JavaPath == jvm.Auto {
		if err := os.MkdirAll(cfg.RuntimesPath, 0755); err != nil {
			store.Close()
			return nil, fmt.Errorf("could not create directory '%s': %w", cfg.RuntimesPath, err)
		}
	}

	hub := ws.NewHub(log)
	notifier := events.NewNotifier(hub)

	authService := auth.NewService(store, auth.NewTokenIssuer(secret), auth.Options{
		TokenTTL:    time.Duration(cfg.TokenTTLMinutes) * time.Minute,
		RememberTTL: time.Duration(cfg.RememberTTLHours) * time.Hour,
	}, log)

	catalog := loader.NewCatalog(loader.Config{
		ManifestURL: cfg.MojangManifestURL,
		ForgeAPIURL: cfg.ForgeAPIURL,
		Java:        java,
	}, log)

	supervisor := runner.NewSupervisor(store, notifier, runner.Options{
		ServersPath: cfg.ServersPath,
		Java:        java,
		StopTimeout: time.Duration(cfg.StopTimeoutSeconds) * time.Second,
	}, log)

	manager := server.NewManager(cfg.ServersPath, store, catalog, supervisor, notifier, log)

	return &Container{
		Config:        cfg,
		Logger:        log,
		Store:         store,
		Auth:          authService,
		Java:          java,
		Hub:           hub,
		Notifier:      notifier,
		Catalog:       catalog,
		Supervisor:    supervisor,
		ServerManager: manager,
	}, nil
}

func (c *Container) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Config.Port)
}

func (c *Container) Close() error {
	return c.Store.Close()
}
