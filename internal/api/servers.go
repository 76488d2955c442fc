package api

import (
	"context"
	"encoding/json"
	"html"
	"net/http"
	"regexp"
	"strings"

	"mcpanel/internal/domain"
	"mcpanel/internal/version"
)

var serverNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{1,16}$`)

func (api *Server) handleListMCVersions(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	versions, err := api.servers.MCVersions(r.Context())
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"versions": version.Strings(versions)})
}

func (api *Server) handleListForgeVersions(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	raw := r.PathValue("mc_version")
	if !version.IsValid(raw) {
		api.log.Debug("Invalid mc_version", "mc_version", raw)
		writeMessage(w, http.StatusBadRequest, "Invalid mc_version")
		return
	}
	mc, err := version.Parse(raw)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid mc_version")
		return
	}

	versions, err := api.servers.ForgeVersions(r.Context(), mc)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"versions": version.Strings(versions)})
}

func (api *Server) handleListServers(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	servers, err := api.servers.ListServers()
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	if servers == nil {
		servers = []domain.ServerDescriptor{}
	}
	writeJSON(w, http.StatusOK, servers)
}

func (api *Server) handleGetServer(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	srv, err := api.servers.GetServer(r.PathValue("name"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, srv)
}

func (api *Server) handleServerStats(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	stats, err := api.servers.ServerStats(r.PathValue("name"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (api *Server) handleListServerDirs(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	dirs, err := api.servers.ListInstallDirs()
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"dirs": dirs})
}

// parseCreateRequest checks fields in a fixed order and reports the first
// problem. The reason is only logged.
func parseCreateRequest(data map[string]any) (domain.CreateServerRequest, string) {
	var req domain.CreateServerRequest

	name, ok := stringField(data, "name")
	if !ok || !serverNamePattern.MatchString(name) {
		return req, "invalid server name"
	}
	req.Name = html.EscapeString(strings.TrimSpace(name))

	serverType, ok := stringField(data, "type")
	if !ok || serverType == "" {
		return req, "invalid server type"
	}
	req.Type = serverType

	path, ok := stringField(data, "path")
	if !ok || strings.TrimSpace(path) == "" {
		return req, "invalid server path"
	}
	req.Path = html.EscapeString(strings.TrimSpace(path))

	mc, ok := stringField(data, "mc_version")
	if !ok || mc == "" {
		return req, "invalid mc_version"
	}
	mcVersion, err := version.Parse(mc)
	if err != nil {
		return req, "invalid mc_version"
	}
	req.MCVersion = mcVersion

	if serverType != domain.TypeVanilla {
		ml, ok := stringField(data, "modloader_version")
		if !ok || ml == "" {
			return req, "modloader version is required for non-vanilla servers"
		}
		mlVersion, err := version.Parse(ml)
		if err != nil {
			return req, "invalid modloader_version"
		}
		req.ModloaderVersion = &mlVersion
	}

	if v, present := data["autostart"]; present {
		autostart, ok := v.(bool)
		if !ok {
			return req, "invalid autostart value"
		}
		req.Autostart = autostart
	}

	num, ok := data["ram"].(json.Number)
	if !ok {
		return req, "invalid RAM value"
	}
	ram, err := num.Int64()
	if err != nil || ram <= 0 {
		return req, "invalid RAM value"
	}
	req.RAM = int(ram)

	return req, ""
}

func (api *Server) handleCreateServer(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	data, err := decodeBody(r)
	if err != nil {
		api.log.Debug("Invalid create_server body", "error", err)
		writeMessage(w, http.StatusBadRequest, "Invalid parameters")
		return
	}

	req, problem := parseCreateRequest(data)
	if problem != "" {
		api.log.Debug("Rejected create_server request", "reason", problem)
		writeMessage(w, http.StatusBadRequest, "Invalid parameters")
		return
	}

	if err := api.servers.CreateServer(r.Context(), req); err != nil {
		api.writeError(w, r, err)
		return
	}
	api.log.Info("Server created", "server", req.Name, "by", auth.User.Username)
	writeMessage(w, http.StatusCreated, "Server created")
}

func (api *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	if err := api.servers.DeleteServer(r.PathValue("name")); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Server deleted")
}

func (api *Server) handleRenameServer(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	data, err := decodeBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid parameters")
		return
	}
	newName, ok := stringField(data, "new_name")
	if !ok || !serverNamePattern.MatchString(newName) {
		writeMessage(w, http.StatusBadRequest, "Invalid parameters")
		return
	}

	if err := api.servers.RenameServer(r.PathValue("name"), newName); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Server renamed")
}

func (api *Server) handleStartServer(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	if err := api.servers.StartServer(r.PathValue("name")); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Server started")
}

func (api *Server) handleStopServer(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	if err := api.servers.StopServer(r.PathValue("name")); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Server stopped")
}

func (api *Server) handleRestartServer(w http.ResponseWriter, r *http.Request, auth AuthContext) {
	if err := api.servers.RestartServer(context.WithoutCancel(r.Context()), r.PathValue("name")); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Server restarted")
}
