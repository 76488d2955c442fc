package loader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mcpanel/internal/domain"
	"mcpanel/internal/jvm"
	"mcpanel/internal/version"
)

const forgeMavenURL = "https://maven.minecraftforge.net/net/minecraftforge/forge/"

type ForgeLoader struct {
	apiURL   string
	mavenURL string
	java     JavaResolver
	client   *http.Client
	log      *slog.Logger
}

func NewForgeLoader(apiURL string, java JavaResolver, client *http.Client, log *slog.Logger) *ForgeLoader {
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	return &ForgeLoader{apiURL: apiURL, mavenURL: forgeMavenURL, java: java, client: client, log: log}
}

// LoaderVersions lists Forge builds for a Minecraft version, newest first.
func (l *ForgeLoader) LoaderVersions(ctx context.Context, mc version.Version) ([]version.Version, error) {
	type forgeLoaderVersion struct {
		Version string `json:"version"`
	}

	var loaderInfo []forgeLoaderVersion
	if err := getJSON(ctx, l.client, l.apiURL+"minecraft/"+url.PathEscape(mc.String()), &loaderInfo); err != nil {
		return nil, fmt.Errorf("error getting Forge versions for %s: %w", mc, err)
	}

	ids := make([]string, 0, len(loaderInfo))
	for _, v := range loaderInfo {
		ids = append(ids, v.Version)
	}

	versions := version.ParseAll(ids)
	version.Sort(versions)
	return versions, nil
}

func (l *ForgeLoader) Install(ctx context.Context, mc version.Version, modloader *version.Version, destDir string) error {
	if modloader == nil {
		return fmt.Errorf("%w: forge requires a modloader version", domain.ErrInvalid)
	}

	forgeVersion := fmt.Sprintf("%s-%s", mc, modloader)
	downloadURL := fmt.Sprintf("%s%s/forge-%s-installer.jar", l.mavenURL, forgeVersion, forgeVersion)
	installerPath := filepath.Join(destDir, "installer.jar")

	l.log.Info("Downloading Forge installer", "url", downloadURL)
	if err := downloadFile(ctx, l.client, downloadURL, installerPath); err != nil {
		return err
	}

	javaPath, err := l.java.JavaFor(ctx, jvm.RequiredMajor(mc))
	if err != nil {
		return fmt.Errorf("no java runtime for Forge installer: %w", err)
	}

	l.log.Info("Running Forge installer", "dir", destDir, "java", javaPath)
	cmd := exec.CommandContext(ctx, javaPath, "-jar", "installer.jar", "--installServer")
	cmd.Dir = destDir
	if out, err := cmd.CombinedOutput(); err != nil {
		l.log.Debug("Forge installer output", "output", string(out))
		return fmt.Errorf("error running Forge installer: %w", err)
	}

	if err := os.Remove(installerPath); err != nil {
		return fmt.Errorf("error removing installer: %w", err)
	}

	l.log.Info("Forge installation completed", "version", forgeVersion)
	return nil
}
