package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"mcpanel/internal/version"
)

type Manifest struct {
	Versions []ManifestVersion `json:"versions"`
}

type ManifestVersion struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

type VersionDetails struct {
	Downloads Downloads `json:"downloads"`
}

type Downloads struct {
	Server DownloadInfo `json:"server"`
}

type DownloadInfo struct {
	URL string `json:"url"`
}

type VanillaLoader struct {
	manifestURL string
	client      *http.Client
	log         *slog.Logger
}

func NewVanillaLoader(manifestURL string, client *http.Client, log *slog.Logger) *VanillaLoader {
	return &VanillaLoader{manifestURL: manifestURL, client: client, log: log}
}

// ReleaseVersions lists release versions from the Mojang manifest, newest first.
// Snapshots and betas are skipped.
func (l *VanillaLoader) ReleaseVersions(ctx context.Context) ([]version.Version, error) {
	manifest, err := l.fetchManifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get version manifest: %w", err)
	}

	var ids []string
	for _, v := range manifest.Versions {
		if v.Type == "release" {
			ids = append(ids, v.ID)
		}
	}

	versions := version.ParseAll(ids)
	version.Sort(versions)
	return versions, nil
}

func (l *VanillaLoader) Install(ctx context.Context, mc version.Version, _ *version.Version, destDir string) error {
	l.log.Info("Searching for version", "mc_version", mc)

	manifest, err := l.fetchManifest(ctx)
	if err != nil {
		return err
	}

	var versionURL string
	for _, v := range manifest.Versions {
		if v.ID == mc.String() {
			versionURL = v.URL
			break
		}
	}
	if versionURL == "" {
		return fmt.Errorf("version %s not found in Mojang manifest", mc)
	}

	var details VersionDetails
	if err := getJSON(ctx, l.client, versionURL, &details); err != nil {
		return err
	}
	if details.Downloads.Server.URL == "" {
		return fmt.Errorf("version %s has no server download", mc)
	}

	l.log.Info("Downloading server.jar", "url", details.Downloads.Server.URL)
	if err := downloadFile(ctx, l.client, details.Downloads.Server.URL, filepath.Join(destDir, "server.jar")); err != nil {
		return err
	}

	l.log.Info("Installation completed", "mc_version", mc)
	return nil
}

func (l *VanillaLoader) fetchManifest(ctx context.Context) (*Manifest, error) {
	var m Manifest
	if err := getJSON(ctx, l.client, l.manifestURL, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s responded with status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func downloadFile(ctx context.Context, client *http.Client, url string, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error downloading file: status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}
