package sdk

import (
	"encoding/json"
	"time"
)

type Message struct {
	Message string `json:"message"`
}

type Server struct {
	Name             string     `json:"name"`
	Type             string     `json:"type"`
	Path             string     `json:"path"`
	MCVersion        string     `json:"mc_version"`
	ModloaderVersion *string    `json:"modloader_version"`
	RAM              int        `json:"ram"`
	Autostart        bool       `json:"autostart"`
	Status           string     `json:"status"`
	StartedAt        *time.Time `json:"started_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

type ServerStats struct {
	CPU float64 `json:"cpu"`
	RAM uint64  `json:"ram"`
}

type User struct {
	Username     string `json:"username"`
	AccessLevel  string `json:"access_level"`
	RegisteredAt string `json:"registered_at"`
	LastLogin    string `json:"last_login"`
}

type CreateServerRequest struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	Path             string `json:"path"`
	MCVersion        string `json:"mc_version"`
	ModloaderVersion string `json:"modloader_version,omitempty"`
	RAM              int    `json:"ram"`
	Autostart        bool   `json:"autostart"`
}

// Event is one frame pushed over the realtime channel.
type Event struct {
	Event string                     `json:"event"`
	Data  map[string]json.RawMessage `json:"data"`
}

// String returns a string field of the payload, or "" when absent.
func (e Event) String(key string) string {
	raw, ok := e.Data[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
