package sdk

import (
	"fmt"
	"net/url"
)

func (c *Client) ListServers() ([]Server, error) {
	var servers []Server
	err := c.get("/api/servers", &servers)
	return servers, err
}

func (c *Client) GetServer(name string) (*Server, error) {
	var server Server
	if err := c.get("/api/server/"+url.PathEscape(name), &server); err != nil {
		return nil, err
	}
	return &server, nil
}

func (c *Client) GetServerStats(name string) (*ServerStats, error) {
	var stats ServerStats
	if err := c.get(fmt.Sprintf("/api/server/%s/stats", url.PathEscape(name)), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) CreateServer(req CreateServerRequest) error {
	return c.post("/api/create_server", req, nil)
}

func (c *Client) StartServer(name string) error {
	return c.post("/api/start_server/"+url.PathEscape(name), nil, nil)
}

func (c *Client) StopServer(name string) error {
	return c.post("/api/stop_server/"+url.PathEscape(name), nil, nil)
}

func (c *Client) RestartServer(name string) error {
	return c.post("/api/restart_server/"+url.PathEscape(name), nil, nil)
}

func (c *Client) DeleteServer(name string) error {
	return c.post("/api/delete_server/"+url.PathEscape(name), nil, nil)
}

func (c *Client) RenameServer(name, newName string) error {
	return c.post("/api/rename_server/"+url.PathEscape(name), map[string]string{"new_name": newName}, nil)
}

type versionList struct {
	Versions []string `json:"versions"`
}

func (c *Client) ListMCVersions() ([]string, error) {
	var list versionList
	err := c.get("/api/mc_versions", &list)
	return list.Versions, err
}

func (c *Client) ListForgeVersions(mcVersion string) ([]string, error) {
	var list versionList
	err := c.get("/api/forge_versions/"+url.PathEscape(mcVersion), &list)
	return list.Versions, err
}

func (c *Client) ListServerDirs() ([]string, error) {
	var list struct {
		Dirs []string `json:"dirs"`
	}
	err := c.get("/api/list_mc_server_dirs", &list)
	return list.Dirs, err
}
