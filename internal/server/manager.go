package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mcpanel/internal/domain"
	"mcpanel/internal/events"
	"mcpanel/internal/loader"
	"mcpanel/internal/version"
)

type Catalog interface {
	MCVersions(ctx context.Context) ([]version.Version, error)
	ForgeVersions(ctx context.Context, mc version.Version) ([]version.Version, error)
	ForType(serverType string) (loader.ServerLoader, error)
}

type Supervisor interface {
	Start(name string) error
	Stop(name string) error
	Restart(ctx context.Context, name string) error
	IsRunning(name string) bool
	Stats(name string) (domain.ServerStats, error)
}

// Manager owns server descriptors and their install directories.
type Manager struct {
	serversPath string
	store       domain.ServerRepository
	catalog     Catalog
	supervisor  Supervisor
	notifier    *events.Notifier
	log         *slog.Logger
}

func NewManager(serversPath string, store domain.ServerRepository, catalog Catalog, supervisor Supervisor, notifier *events.Notifier, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		serversPath: serversPath,
		store:       store,
		catalog:     catalog,
		supervisor:  supervisor,
		notifier:    notifier,
		log:         log.With("component", "server"),
	}
}

func (m *Manager) MCVersions(ctx context.Context) ([]version.Version, error) {
	return m.catalog.MCVersions(ctx)
}

func (m *Manager) ForgeVersions(ctx context.Context, mc version.Version) ([]version.Version, error) {
	return m.catalog.ForgeVersions(ctx, mc)
}

func (m *Manager) ListServers() ([]domain.ServerDescriptor, error) {
	return m.store.ListServers()
}

func (m *Manager) GetServer(name string) (*domain.ServerDescriptor, error) {
	srv, err := m.store.GetServerByName(name)
	if err != nil {
		return nil, err
	}
	if srv == nil {
		return nil, fmt.Errorf("server %q: %w", name, domain.ErrNotFound)
	}
	return srv, nil
}

// ListInstallDirs lists directories under the servers path that no server uses yet.
func (m *Manager) ListInstallDirs() ([]string, error) {
	entries, err := os.ReadDir(m.serversPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("error reading servers directory: %w", err)
	}

	servers, err := m.store.ListServers()
	if err != nil {
		return nil, err
	}
	bound := make(map[string]bool, len(servers))
	for _, srv := range servers {
		bound[filepath.Clean(srv.Path)] = true
	}

	dirs := []string{}
	for _, e := range entries {
		if e.IsDir() && !bound[e.Name()] {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// resolvePath returns the absolute install directory for rel, which must stay
// inside the servers path.
func (m *Manager) resolvePath(rel string) (string, string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: invalid server path %q", domain.ErrInvalid, rel)
	}

	root, err := filepath.Abs(m.serversPath)
	if err != nil {
		return "", "", err
	}
	full := filepath.Join(root, clean)
	if !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: server path escapes servers directory", domain.ErrInvalid)
	}
	return clean, full, nil
}

func (m *Manager) CreateServer(ctx context.Context, req domain.CreateServerRequest) error {
	existing, err := m.store.GetServerByName(req.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("server %q: %w", req.Name, domain.ErrAlreadyExists)
	}

	installer, err := m.catalog.ForType(req.Type)
	if err != nil {
		return err
	}

	modloader := req.ModloaderVersion
	if req.Type == domain.TypeVanilla {
		modloader = nil
	} else if modloader == nil {
		return fmt.Errorf("%w: %s servers require a modloader version", domain.ErrInvalid, req.Type)
	}

	relPath, serverDir, err := m.resolvePath(req.Path)
	if err != nil {
		return err
	}

	fresh, err := isEmptyOrMissing(serverDir)
	if err != nil {
		return fmt.Errorf("filesystem error: %w", err)
	}
	if err := os.MkdirAll(serverDir, 0755); err != nil {
		return fmt.Errorf("filesystem error: %w", err)
	}
	cleanup := func() {
		if fresh {
			os.RemoveAll(serverDir)
		}
	}

	if fresh {
		m.log.Info("Installing server", "server", req.Name, "type", req.Type, "mc_version", req.MCVersion)
		if err := installer.Install(ctx, req.MCVersion, modloader, serverDir); err != nil {
			cleanup()
			return fmt.Errorf("install error: %w", err)
		}
	} else {
		m.log.Info("Using existing server directory", "server", req.Name, "path", relPath)
	}

	if err := os.WriteFile(filepath.Join(serverDir, "eula.txt"), []byte("eula=true\n"), 0644); err != nil {
		cleanup()
		return fmt.Errorf("filesystem error: %w", err)
	}
	if err := UpdateServerProperties(serverDir, map[string]string{"motd": req.Name}); err != nil {
		m.log.Warn("Could not write server.properties", "server", req.Name, "error", err)
	}

	srv := &domain.ServerDescriptor{
		Name:             req.Name,
		Type:             req.Type,
		Path:             filepath.ToSlash(relPath),
		MCVersion:        req.MCVersion,
		ModloaderVersion: modloader,
		RAM:              req.RAM,
		Autostart:        req.Autostart,
		Status:           domain.StatusStopped,
		CreatedAt:        time.Now(),
	}
	if err := m.store.SaveServer(srv); err != nil {
		cleanup()
		return err
	}

	m.log.Info("Server created", "server", srv.Name, "path", srv.Path)
	m.notifier.ServerCreated(srv.Name, srv.Type, srv.Path, srv.Autostart, srv.MCVersion, srv.ModloaderVersion, srv.RAM)
	return nil
}

func isEmptyOrMissing(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	return len(entries) == 0, nil
}

func (m *Manager) StartServer(name string) error {
	return m.supervisor.Start(name)
}

func (m *Manager) StopServer(name string) error {
	return m.supervisor.Stop(name)
}

func (m *Manager) RestartServer(ctx context.Context, name string) error {
	return m.supervisor.Restart(ctx, name)
}

func (m *Manager) ServerStats(name string) (domain.ServerStats, error) {
	if _, err := m.GetServer(name); err != nil {
		return domain.ServerStats{}, err
	}
	return m.supervisor.Stats(name)
}

// DeleteServer removes a stopped server and its files.
func (m *Manager) DeleteServer(name string) error {
	srv, err := m.GetServer(name)
	if err != nil {
		return err
	}
	if m.supervisor.IsRunning(name) {
		return fmt.Errorf("%w: server %s must be stopped first", domain.ErrInvalid, name)
	}

	_, serverDir, err := m.resolvePath(srv.Path)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(serverDir); err != nil {
		return fmt.Errorf("error deleting server files: %w", err)
	}
	if err := m.store.DeleteServer(name); err != nil {
		return fmt.Errorf("error deleting server from database: %w", err)
	}

	m.log.Info("Server deleted", "server", name)
	m.notifier.ServerDeleted(name)
	return nil
}

func (m *Manager) RenameServer(oldName, newName string) error {
	if _, err := m.GetServer(oldName); err != nil {
		return err
	}
	if m.supervisor.IsRunning(oldName) {
		return fmt.Errorf("%w: server %s must be stopped first", domain.ErrInvalid, oldName)
	}
	if err := m.store.RenameServer(oldName, newName); err != nil {
		return err
	}

	m.log.Info("Server renamed", "old_name", oldName, "new_name", newName)
	m.notifier.ServerRenamed(oldName, newName)
	return nil
}
