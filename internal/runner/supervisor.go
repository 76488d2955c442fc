package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"mcpanel/internal/domain"
	"mcpanel/internal/events"
	"mcpanel/internal/jvm"
	"mcpanel/internal/runner/strategy"

	"github.com/shirou/gopsutil/v3/process"
)

// JavaResolver picks the java binary for a required major version.
type JavaResolver interface {
	JavaFor(ctx context.Context, major int) (string, error)
}

type fixedJava string

func (f fixedJava) JavaFor(context.Context, int) (string, error) { return string(f), nil }

type Options struct {
	ServersPath string
	Java        JavaResolver
	StopTimeout time.Duration
}

type Supervisor struct {
	store       domain.ServerRepository
	notifier    *events.Notifier
	serversPath string
	java        JavaResolver
	stopTimeout time.Duration
	log         *slog.Logger

	runnerFor func(serverType string) (strategy.ServerRunner, error)

	processes map[string]*ActiveProcess
	mu        sync.Mutex
}

type ActiveProcess struct {
	Cmd      *exec.Cmd
	Stdin    io.WriteCloser
	done     chan struct{}
	stopping bool
}

func NewSupervisor(store domain.ServerRepository, notifier *events.Notifier, opts Options, log *slog.Logger) *Supervisor {
	if opts.Java == nil {
		opts.Java = fixedJava("java")
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}

	return &Supervisor{
		store:       store,
		notifier:    notifier,
		serversPath: opts.ServersPath,
		java:        opts.Java,
		stopTimeout: opts.StopTimeout,
		log:         log.With("component", "runner"),
		runnerFor:   strategy.For,
		processes:   make(map[string]*ActiveProcess),
	}
}

func (s *Supervisor) IsRunning(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processes[name]
	return ok
}

func (s *Supervisor) Start(name string) error {
	if s.IsRunning(name) {
		return fmt.Errorf("%w: server %s is already running", domain.ErrInvalid, name)
	}

	srv, err := s.store.GetServerByName(name)
	if err != nil {
		return err
	}
	if srv == nil {
		return fmt.Errorf("server %q: %w", name, domain.ErrNotFound)
	}

	absServerDir, err := filepath.Abs(filepath.Join(s.serversPath, srv.Path))
	if err != nil {
		return fmt.Errorf("error getting absolute path for server: %w", err)
	}

	// May download a runtime. Must not hold s.mu.
	javaMajor := jvm.RequiredMajor(srv.MCVersion)
	javaPath, err := s.java.JavaFor(context.Background(), javaMajor)
	if err != nil {
		return fmt.Errorf("no java %d runtime: %w", javaMajor, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.processes[name]; exists {
		return fmt.Errorf("%w: server %s is already running", domain.ErrInvalid, name)
	}

	runner, err := s.runnerFor(srv.Type)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	cmd, err := runner.BuildCommand(strategy.Launch{Java: javaPath, Dir: absServerDir, RAM: srv.RAM})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	prepareCommand(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	s.log.Info("Starting server", "server", name, "type", srv.Type, "java", javaPath, "java_major", javaMajor)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	proc := &ActiveProcess{Cmd: cmd, Stdin: stdin, done: make(chan struct{})}
	s.processes[name] = proc

	s.setStatus(name, domain.StatusStarting, nil)
	s.notifier.ServerStarting(name)

	var readers sync.WaitGroup
	for _, r := range []io.Reader{stdout, stderr} {
		readers.Add(1)
		go func(r io.Reader) {
			defer readers.Done()
			scanner := bufio.NewScanner(r)
			for scanner.Scan() {
				s.handleLine(name, scanner.Text())
			}
		}(r)
	}

	go func() {
		readers.Wait()
		err := cmd.Wait()
		s.exited(name, proc, err)
	}()

	return nil
}

func (s *Supervisor) handleLine(name, line string) {
	s.notifier.ConsoleLog(name, line)

	parsed := ParseLine(line)
	switch parsed.Kind {
	case LineStarted:
		now := time.Now()
		s.setStatus(name, domain.StatusRunning, &now)
		s.notifier.ServerStarted(name)
	case LineChat:
		s.notifier.ConsoleMessage(name, fmt.Sprintf("<%s> %s", parsed.Player, parsed.Message))
	case LineJoined:
		s.notifier.PlayerJoined(name, parsed.Player)
	case LineLeft:
		s.notifier.PlayerLeft(name, parsed.Player)
	case LineKicked:
		s.notifier.PlayerKicked(name, parsed.Player, parsed.Reason)
	case LineBanned:
		s.notifier.PlayerBanned(name, parsed.Player, parsed.Reason)
	case LinePardoned:
		s.notifier.PlayerPardoned(name, parsed.Player)
	}
}

func (s *Supervisor) exited(name string, proc *ActiveProcess, err error) {
	s.mu.Lock()
	delete(s.processes, name)
	stopping := proc.stopping
	s.mu.Unlock()

	if err == nil || stopping {
		s.log.Info("Server stopped", "server", name)
		s.setStatus(name, domain.StatusStopped, nil)
		s.notifier.ServerStopped(name)
	} else {
		s.log.Warn("Server crashed", "server", name, "error", err)
		s.setStatus(name, domain.StatusCrashed, nil)
		s.notifier.ServerCrashed(name)
	}
	close(proc.done)
}

func (s *Supervisor) setStatus(name, status string, startedAt *time.Time) {
	if err := s.store.UpdateServerStatus(name, status, startedAt); err != nil {
		s.log.Warn("Could not update server status", "server", name, "status", status, "error", err)
	}
}

// Stop asks the server to shut down by writing "stop" to its console. It does
// not wait for the process to exit.
func (s *Supervisor) Stop(name string) error {
	_, err := s.requestStop(name)
	return err
}

func (s *Supervisor) requestStop(name string) (*ActiveProcess, error) {
	s.mu.Lock()
	proc, exists := s.processes[name]
	if exists {
		proc.stopping = true
	}
	s.mu.Unlock()

	if !exists {
		return nil, fmt.Errorf("%w: server %s is not running", domain.ErrInvalid, name)
	}

	s.setStatus(name, domain.StatusStopping, nil)
	s.notifier.ServerStopping(name)

	if _, err := io.WriteString(proc.Stdin, "stop\n"); err != nil {
		return proc, fmt.Errorf("error sending stop command: %w", err)
	}
	return proc, nil
}

// wait blocks until proc exits, killing it once the stop timeout elapses.
func (s *Supervisor) wait(ctx context.Context, name string, proc *ActiveProcess) error {
	timer := time.NewTimer(s.stopTimeout)
	defer timer.Stop()

	select {
	case <-proc.done:
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	s.log.Warn("Server did not stop in time, killing it", "server", name)
	if err := killProcess(proc.Cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("error killing server: %w", err)
	}
	<-proc.done
	return nil
}

// Restart stops the server, waits for it to exit and starts it again.
func (s *Supervisor) Restart(ctx context.Context, name string) error {
	proc, err := s.requestStop(name)
	if err != nil && proc == nil {
		return err
	}
	if err := s.wait(ctx, name, proc); err != nil {
		return err
	}
	return s.Start(name)
}

// StopAll stops every running server and waits for them to exit.
func (s *Supervisor) StopAll(ctx context.Context) {
	s.mu.Lock()
	names := make([]string, 0, len(s.processes))
	for name := range s.processes {
		names = append(names, name)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, name := range names {
		proc, err := s.requestStop(name)
		if proc == nil {
			continue
		}
		if err != nil {
			s.log.Warn("Error stopping server", "server", name, "error", err)
		}
		wg.Add(1)
		go func(name string, proc *ActiveProcess) {
			defer wg.Done()
			if err := s.wait(ctx, name, proc); err != nil {
				s.log.Error("Error waiting for server", "server", name, "error", err)
			}
		}(name, proc)
	}
	wg.Wait()
}

// Autostart resets stale statuses left by a previous run and launches every
// server flagged for autostart.
func (s *Supervisor) Autostart() {
	servers, err := s.store.ListServers()
	if err != nil {
		s.log.Error("Could not list servers for autostart", "error", err)
		return
	}

	for _, srv := range servers {
		if s.IsRunning(srv.Name) {
			continue
		}
		if srv.Status != domain.StatusStopped && srv.Status != domain.StatusCrashed {
			s.setStatus(srv.Name, domain.StatusStopped, nil)
		}
		if !srv.Autostart {
			continue
		}
		if err := s.Start(srv.Name); err != nil {
			s.log.Error("Autostart failed", "server", srv.Name, "error", err)
		}
	}
}

// Stats reports CPU and resident memory of a running server process.
func (s *Supervisor) Stats(name string) (domain.ServerStats, error) {
	s.mu.Lock()
	proc, exists := s.processes[name]
	s.mu.Unlock()

	if !exists {
		return domain.ServerStats{}, nil
	}

	p, err := process.NewProcess(int32(proc.Cmd.Process.Pid))
	if err != nil {
		return domain.ServerStats{}, fmt.Errorf("error reading process: %w", err)
	}

	var stats domain.ServerStats
	if cpu, err := p.CPUPercent(); err == nil {
		stats.CPU = cpu
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		stats.RAM = mem.RSS
	}
	return stats, nil
}
