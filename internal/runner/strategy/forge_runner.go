package strategy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var errFound = errors.New("found")

// ForgeRunner launches Forge servers. Installs for 1.17+ leave an args file
// under libraries/; older ones leave a forge-<mc>-<version>.jar in the
// server directory.
type ForgeRunner struct{}

func (r *ForgeRunner) BuildCommand(l Launch) (*exec.Cmd, error) {
	argsFile, err := findArgsFile(l.Dir)
	if err != nil {
		return nil, err
	}

	args := heapArgs(l.RAM)

	if argsFile != "" {
		userArgs := filepath.Join(l.Dir, "user_jvm_args.txt")
		if _, err := os.Stat(userArgs); err == nil {
			args = append(args, "@"+userArgs)
		}
		args = append(args, "@"+argsFile, "nogui")
		return command(l, args), nil
	}

	jar, err := findLegacyJar(l.Dir)
	if err != nil {
		return nil, err
	}
	args = append(args, "-jar", jar, "nogui")
	return command(l, args), nil
}

func argsFileName() string {
	if runtime.GOOS == "windows" {
		return "win_args.txt"
	}
	return "unix_args.txt"
}

func findArgsFile(serverDir string) (string, error) {
	librariesDir := filepath.Join(serverDir, "libraries")
	if _, err := os.Stat(librariesDir); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	target := argsFileName()
	var found string
	err := filepath.WalkDir(librariesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == target {
			found = path
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("error scanning libraries: %w", err)
	}
	return found, nil
}

func findLegacyJar(serverDir string) (string, error) {
	entries, err := os.ReadDir(serverDir)
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", serverDir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "forge-") || !strings.HasSuffix(name, ".jar") {
			continue
		}
		if strings.Contains(name, "installer") {
			continue
		}
		return name, nil
	}
	return "", fmt.Errorf("no Forge args file or server jar in %s", serverDir)
}
