package strategy

import (
	"fmt"
	"os/exec"
)

// Launch holds what a runner needs to start one server.
type Launch struct {
	Java string
	Dir  string // absolute server directory
	RAM  int    // megabytes
}

// ServerRunner builds the launch command for one server type.
type ServerRunner interface {
	BuildCommand(l Launch) (*exec.Cmd, error)
}

const initialHeapMB = 512

func heapArgs(ram int) []string {
	initial := initialHeapMB
	if ram < initial {
		initial = ram
	}
	return []string{fmt.Sprintf("-Xmx%dM", ram), fmt.Sprintf("-Xms%dM", initial)}
}

func command(l Launch, args []string) *exec.Cmd {
	cmd := exec.Command(l.Java, args...)
	cmd.Dir = l.Dir
	return cmd
}
