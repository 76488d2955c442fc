package jvm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Auto makes the manager download a matching runtime per Minecraft version
// instead of using a fixed java binary.
const Auto = "auto"

const defaultAdoptiumURL = "https://api.adoptium.net/v3/binary/latest/"

var versionPattern = regexp.MustCompile(`version\s+"([^"]+)"`)
var digits = regexp.MustCompile(`\d+`)

type Manager struct {
	javaPath     string
	runtimesPath string
	baseURL      string
	client       *http.Client
	log          *slog.Logger
	group        singleflight.Group
}

// NewManager returns a resolver for java binaries. Unless javaPath is Auto it
// is returned as is for every request.
func NewManager(javaPath, runtimesPath string, client *http.Client, log *slog.Logger) *Manager {
	if javaPath == "" {
		javaPath = "java"
	}
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		javaPath:     javaPath,
		runtimesPath: runtimesPath,
		baseURL:      defaultAdoptiumURL,
		client:       client,
		log:          log.With("component", "jvm"),
	}
}

// JavaFor returns a java binary able to run code needing the given major version.
func (m *Manager) JavaFor(ctx context.Context, major int) (string, error) {
	if m.javaPath != Auto {
		return m.javaPath, nil
	}

	path, err, _ := m.group.Do(strconv.Itoa(major), func() (interface{}, error) {
		return m.ensureJava(ctx, major)
	})
	if err != nil {
		return "", err
	}
	return path.(string), nil
}

func javaBinName() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}

func (m *Manager) ensureJava(ctx context.Context, major int) (string, error) {
	installDir := filepath.Join(m.runtimesPath, fmt.Sprintf("java-%d", major))

	if fi, err := os.Stat(installDir); err == nil && fi.IsDir() {
		if found, err := findJavaBin(installDir, javaBinName()); err == nil {
			if ok, _ := validateJavaVersion(found, major); ok {
				return filepath.Abs(found)
			}
		}
	}

	m.log.Info("Java runtime not found, installing", "major", major, "os", runtime.GOOS)

	if err := m.downloadAndInstall(ctx, major, installDir); err != nil {
		_ = os.RemoveAll(installDir)
		return "", err
	}

	finalBin, err := findJavaBin(installDir, javaBinName())
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(finalBin)
	if err != nil {
		return "", fmt.Errorf("could not get absolute path: %w", err)
	}

	if runtime.GOOS != "windows" {
		_ = os.Chmod(absPath, 0755)
	}

	m.log.Info("Java runtime installed", "major", major, "path", absPath)
	return absPath, nil
}

// platform maps GOOS/GOARCH onto Adoptium's names and archive format.
func platform(goos, goarch string) (apiOS, arch, ext string, err error) {
	switch goos {
	case "windows":
		apiOS, ext = "windows", ".zip"
	case "darwin":
		apiOS, ext = "mac", ".tar.gz"
	case "linux":
		apiOS, ext = "linux", ".tar.gz"
	default:
		return "", "", "", fmt.Errorf("unsupported operating system: %s", goos)
	}

	switch goarch {
	case "amd64":
		arch = "x64"
	case "arm64":
		arch = "aarch64"
	default:
		return "", "", "", fmt.Errorf("unsupported architecture: %s", goarch)
	}
	return apiOS, arch, ext, nil
}

func (m *Manager) downloadAndInstall(ctx context.Context, major int, destDir string) error {
	apiOS, arch, ext, err := platform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s%d/ga/%s/%s/jre/hotspot/normal/eclipse", m.baseURL, major, apiOS, arch)
	m.log.Info("Downloading JRE", "url", url)

	tmpFile, err := os.CreateTemp("", "jre-*"+ext)
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		tmpFile.Close()
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tmpFile.Close()
		return fmt.Errorf("adoptium API error: %d", resp.StatusCode)
	}

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("error closing temp file: %w", err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	m.log.Debug("Unpacking runtime", "ext", ext, "dest", destDir)
	if ext == ".zip" {
		if err := unzip(tmpPath, destDir); err != nil {
			return fmt.Errorf("unzip error: %w", err)
		}
		return nil
	}
	if err := untar(tmpPath, destDir); err != nil {
		return fmt.Errorf("untar error: %w", err)
	}
	return nil
}

func findJavaBin(root, binName string) (string, error) {
	var foundPath string
	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && info.Name() == binName && filepath.Base(filepath.Dir(path)) == "bin" {
			if info.Mode()&0111 != 0 || runtime.GOOS == "windows" {
				foundPath = path
				return io.EOF
			}
		}
		return nil
	})

	if walkErr != nil && walkErr != io.EOF {
		return "", fmt.Errorf("error walking %s: %w", root, walkErr)
	}
	if foundPath == "" {
		return "", fmt.Errorf("binary %s not found under %s", binName, root)
	}
	return foundPath, nil
}

func validateJavaVersion(javaPath string, required int) (bool, error) {
	out, err := exec.Command(javaPath, "-version").CombinedOutput()
	if err != nil {
		return false, nil
	}
	major, ok := parseMajor(string(out))
	return ok && major >= required, nil
}

// parseMajor extracts the major version from `java -version` output.
// Both the legacy "1.8.0_392" and modern "21.0.2" schemes are understood.
func parseMajor(output string) (int, bool) {
	m := versionPattern.FindStringSubmatch(output)
	if len(m) < 2 {
		return 0, false
	}

	parts := strings.Split(m[1], ".")
	field := parts[0]
	if parts[0] == "1" && len(parts) > 1 {
		field = parts[1]
	}

	num := digits.FindString(field)
	if num == "" {
		return 0, false
	}
	major, err := strconv.Atoi(num)
	return major, err == nil
}
