package events

import (
	"time"

	"mcpanel/internal/version"
)

const (
	ServerStarting         = "server_starting"
	ServerStarted          = "server_started"
	ServerStopping         = "server_stopping"
	ServerStopped          = "server_stopped"
	ServerCrashed          = "server_crashed"
	ServerCreated          = "server_created"
	ServerDeleted          = "server_deleted"
	ServerRenamed          = "server_renamed"
	ConsoleMessageReceived = "console_message_received"
	ConsoleLogReceived     = "console_log_received"
	PlayerJoined           = "player_joined"
	PlayerLeft             = "player_left"
	PlayerKicked           = "player_kicked"
	PlayerBanned           = "player_banned"
	PlayerPardoned         = "player_pardoned"
)

// Payload is the free-form data attached to an event.
type Payload map[string]any

// Sender delivers an event to every listener connected at the time of the call.
type Sender interface {
	Send(event string, payload Payload)
}

// Notifier turns typed lifecycle callbacks into catalog events.
type Notifier struct {
	sender Sender
	now    func() time.Time
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender, now: time.Now}
}

func (n *Notifier) emit(event, server string, extra Payload) {
	payload := Payload{
		"timestamp":   n.now().Format(time.RFC3339Nano),
		"server_name": server,
	}
	for k, v := range extra {
		payload[k] = v
	}
	n.sender.Send(event, payload)
}

func (n *Notifier) ServerStarting(server string) { n.emit(ServerStarting, server, nil) }
func (n *Notifier) ServerStarted(server string)  { n.emit(ServerStarted, server, nil) }
func (n *Notifier) ServerStopping(server string) { n.emit(ServerStopping, server, nil) }
func (n *Notifier) ServerStopped(server string)  { n.emit(ServerStopped, server, nil) }
func (n *Notifier) ServerCrashed(server string)  { n.emit(ServerCrashed, server, nil) }
func (n *Notifier) ServerDeleted(server string)  { n.emit(ServerDeleted, server, nil) }

func (n *Notifier) ServerCreated(server, serverType, path string, autostart bool, mc version.Version, modloader *version.Version, ram int) {
	var ml any
	if modloader != nil {
		ml = modloader.String()
	}
	n.emit(ServerCreated, server, Payload{
		"server_type":       serverType,
		"server_path":       path,
		"autostart":         autostart,
		"mc_version":        mc.String(),
		"modloader_version": ml,
		"ram":               ram,
	})
}

// ServerRenamed carries old_name and new_name instead of server_name.
func (n *Notifier) ServerRenamed(oldName, newName string) {
	n.sender.Send(ServerRenamed, Payload{
		"timestamp": n.now().Format(time.RFC3339Nano),
		"old_name":  oldName,
		"new_name":  newName,
	})
}

func (n *Notifier) ConsoleMessage(server, message string) {
	n.emit(ConsoleMessageReceived, server, Payload{"message": message})
}

func (n *Notifier) ConsoleLog(server, line string) {
	n.emit(ConsoleLogReceived, server, Payload{"log": line})
}

func (n *Notifier) PlayerJoined(server, player string) {
	n.emit(PlayerJoined, server, Payload{"player_name": player})
}

func (n *Notifier) PlayerLeft(server, player string) {
	n.emit(PlayerLeft, server, Payload{"player_name": player})
}

func (n *Notifier) PlayerKicked(server, player, reason string) {
	n.emit(PlayerKicked, server, Payload{"player_name": player, "reason": reason})
}

func (n *Notifier) PlayerBanned(server, player, reason string) {
	n.emit(PlayerBanned, server, Payload{"player_name": player, "reason": reason})
}

func (n *Notifier) PlayerPardoned(server, player string) {
	n.emit(PlayerPardoned, server, Payload{"player_name": player})
}
