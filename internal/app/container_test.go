package app

import (
	"os"
	"path/filepath"
	"testing"

	"mcpanel/internal/config"
	"mcpanel/internal/logger"
)

func TestBuildWiresComponents(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.DatabasePath = filepath.Join(dir, "app.db")

	c, err := Build(cfg, "secret", logger.Discard())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer c.Close()

	if c.Auth == nil || c.Hub == nil || c.Supervisor == nil || c.ServerManager == nil || c.Catalog == nil {
		t.Fatalf("Container not fully wired: %+v", c)
	}
	if c.ListenAddr() != ":5001" {
		t.Errorf("Unexpected listen address %s", c.ListenAddr())
	}

	dirs, err := c.ServerManager.ListInstallDirs()
	if err != nil || len(dirs) != 0 {
		t.Errorf("Expected empty servers directory, got %v, %v", dirs, err)
	}
}

func TestBuildCreatesRuntimesDirForManagedJava(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.JavaPath = "auto"

	c, err := Build(cfg, "secret", logger.Discard())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer c.Close()

	if c.Java == nil {
		t.Fatal("Java resolver not wired")
	}
	if info, err := os.Stat(cfg.RuntimesPath); err != nil || !info.IsDir() {
		t.Errorf("Expected runtimes directory at %s: %v", cfg.RuntimesPath, err)
	}
}
