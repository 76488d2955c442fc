package strategy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

type VanillaRunner struct {
	JarName string
}

func (r *VanillaRunner) BuildCommand(l Launch) (*exec.Cmd, error) {
	jar := r.JarName
	if jar == "" {
		jar = "server.jar"
	}

	if _, err := os.Stat(filepath.Join(l.Dir, jar)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s not found in %s", jar, l.Dir)
		}
		return nil, fmt.Errorf("error accessing %s: %w", jar, err)
	}

	args := append(heapArgs(l.RAM), "-jar", jar, "nogui")
	return command(l, args), nil
}
