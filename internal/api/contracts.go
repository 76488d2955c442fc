package api

import (
	"context"
	"net/http"

	"mcpanel/internal/domain"
	"mcpanel/internal/events"
	"mcpanel/internal/version"
)

// SessionStore resolves bearer tokens for the auth gate.
type SessionStore interface {
	LookupToken(token string) (*domain.AccessToken, error)
	LookupUser(username string) (*domain.User, error)
}

type AccountService interface {
	Login(username, password string, remember bool) (string, error)
	Register(username, password string, remember bool) (string, error)
	Logout(token string) error
	DeleteUser(token string) error
	Profile(token string) (*domain.User, error)
	UpdatePassword(token, password string) error
	UserByName(username string) (*domain.User, error)
	UpdateAccessLevel(caller *domain.User, username string, level domain.AccessLevel) error
	UpdateUserPassword(caller *domain.User, username, password string) error
	ListUsers() ([]domain.User, error)
}

type ServerManager interface {
	MCVersions(ctx context.Context) ([]version.Version, error)
	ForgeVersions(ctx context.Context, mc version.Version) ([]version.Version, error)
	ListServers() ([]domain.ServerDescriptor, error)
	GetServer(name string) (*domain.ServerDescriptor, error)
	ListInstallDirs() ([]string, error)
	CreateServer(ctx context.Context, req domain.CreateServerRequest) error
	StartServer(name string) error
	StopServer(name string) error
	RestartServer(ctx context.Context, name string) error
	DeleteServer(name string) error
	RenameServer(oldName, newName string) error
	ServerStats(name string) (domain.ServerStats, error)
}

// EventHub is the realtime side of the façade.
type EventHub interface {
	events.Sender
	Run()
	Stop()
	ServeWs(w http.ResponseWriter, r *http.Request)
}
