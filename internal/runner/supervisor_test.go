package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"mcpanel/internal/domain"
	"mcpanel/internal/events"
	"mcpanel/internal/logger"
	"mcpanel/internal/runner/strategy"
	"mcpanel/internal/storage"
	"mcpanel/internal/version"
)

type scriptRunner struct {
	script string
}

func (r *scriptRunner) BuildCommand(l strategy.Launch) (*exec.Cmd, error) {
	cmd := exec.Command("sh", "-c", r.script)
	cmd.Dir = l.Dir
	return cmd, nil
}

type eventLog struct {
	mu   sync.Mutex
	sent []string
	data []events.Payload
}

func (l *eventLog) Send(event string, payload events.Payload) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, event)
	l.data = append(l.data, payload)
}

func (l *eventLog) has(event string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.sent {
		if e == event {
			return true
		}
	}
	return false
}

func (l *eventLog) payloadOf(event string) events.Payload {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.sent {
		if e == event {
			return l.data[i]
		}
	}
	return nil
}

func (l *eventLog) waitFor(t *testing.T, event string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if l.has(event) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s; got %v", event, l.sent)
}

const serverScript = `echo "[12:00:00] [Server thread/INFO]: Done (1.234s)! For help, type \"help\""
echo "[12:00:01] [Server thread/INFO]: Steve joined the game"
echo "[12:00:02] [Server thread/INFO]: <Steve> hello"
while read line; do
  if [ "$line" = "stop" ]; then
    echo "[12:00:03] [Server thread/INFO]: Stopping the server"
    exit 0
  fi
done`

func newTestSupervisor(t *testing.T, script string, autostart bool) (*Supervisor, *storage.GormStore, *eventLog) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "survival"), 0755); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewGormStore(filepath.Join(dir, "test.db"), logger.Discard())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	store.SaveServer(&domain.ServerDescriptor{
		Name:      "survival",
		Type:      "vanilla",
		Path:      "survival",
		MCVersion: version.New(1, 20, 1),
		RAM:       1024,
		Autostart: autostart,
		Status:    domain.StatusStopped,
		CreatedAt: time.Now(),
	})

	log := &eventLog{}
	sup := NewSupervisor(store, events.NewNotifier(log), Options{ServersPath: dir, StopTimeout: 2 * time.Second}, logger.Discard())
	sup.runnerFor = func(string) (strategy.ServerRunner, error) { return &scriptRunner{script: script}, nil }
	t.Cleanup(func() { sup.StopAll(context.Background()) })
	return sup, store, log
}

func TestStartEmitsLifecycleAndConsoleEvents(t *testing.T) {
	sup, store, log := newTestSupervisor(t, serverScript, false)

	if err := sup.Start("survival"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sup.Start("survival"); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("Expected ErrInvalid for double start, got %v", err)
	}

	log.waitFor(t, events.ServerStarted)
	log.waitFor(t, events.PlayerJoined)
	log.waitFor(t, events.ConsoleMessageReceived)

	if !log.has(events.ServerStarting) || !log.has(events.ConsoleLogReceived) {
		t.Errorf("Missing lifecycle events: %v", log.sent)
	}
	if p := log.payloadOf(events.PlayerJoined); p["player_name"] != "Steve" {
		t.Errorf("Unexpected player payload: %v", p)
	}

	srv, _ := store.GetServerByName("survival")
	if srv.Status != domain.StatusRunning || srv.StartedAt == nil {
		t.Errorf("Expected RUNNING with started_at, got %s %v", srv.Status, srv.StartedAt)
	}

	if err := sup.Stop("survival"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	log.waitFor(t, events.ServerStopped)

	srv, _ = store.GetServerByName("survival")
	if srv.Status != domain.StatusStopped {
		t.Errorf("Expected STOPPED, got %s", srv.Status)
	}
	if sup.IsRunning("survival") {
		t.Error("Process should be gone after stop")
	}
}

func TestCrashIsReported(t *testing.T) {
	sup, store, log := newTestSupervisor(t, `echo "boom"; exit 3`, false)

	if err := sup.Start("survival"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	log.waitFor(t, events.ServerCrashed)

	srv, _ := store.GetServerByName("survival")
	if srv.Status != domain.StatusCrashed {
		t.Errorf("Expected CRASHED, got %s", srv.Status)
	}
}

func TestRestartAndStopErrors(t *testing.T) {
	sup, _, log := newTestSupervisor(t, serverScript, false)

	if err := sup.Stop("survival"); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("Expected ErrInvalid stopping an idle server, got %v", err)
	}
	if err := sup.Start("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown server, got %v", err)
	}

	sup.Start("survival")
	log.waitFor(t, events.ServerStarted)

	if err := sup.Restart(context.Background(), "survival"); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if !log.has(events.ServerStopped) || !sup.IsRunning("survival") {
		t.Errorf("Expected a stop followed by a fresh start, events: %v", log.sent)
	}
}

func TestAutostart(t *testing.T) {
	sup, _, log := newTestSupervisor(t, serverScript, true)

	sup.Autostart()
	log.waitFor(t, events.ServerStarted)

	if _, err := sup.Stats("survival"); err != nil {
		t.Errorf("Stats: %v", err)
	}
}
