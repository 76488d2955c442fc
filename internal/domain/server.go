package domain

import (
	"time"

	"mcpanel/internal/version"
)

const (
	StatusStopped  = "STOPPED"
	StatusStarting = "STARTING"
	StatusRunning  = "RUNNING"
	StatusStopping = "STOPPING"
	StatusCrashed  = "CRASHED"
)

const TypeVanilla = "vanilla"

// ServerDescriptor describes a managed game server.
type ServerDescriptor struct {
	Name             string           `json:"name"`
	Type             string           `json:"type"`
	Path             string           `json:"path"`
	MCVersion        version.Version  `json:"mc_version"`
	ModloaderVersion *version.Version `json:"modloader_version"`
	RAM              int              `json:"ram"`
	Autostart        bool             `json:"autostart"`
	Status           string           `json:"status"`
	StartedAt        *time.Time       `json:"started_at"`
	CreatedAt        time.Time        `json:"created_at"`
}

func (s *ServerDescriptor) IsVanilla() bool {
	return s.Type == TypeVanilla
}

// CreateServerRequest carries already validated fields for a new server.
type CreateServerRequest struct {
	Name             string
	Type             string
	Path             string
	Autostart        bool
	MCVersion        version.Version
	ModloaderVersion *version.Version
	RAM              int
}

type ServerStats struct {
	CPU float64 `json:"cpu"`
	RAM uint64  `json:"ram"`
}
