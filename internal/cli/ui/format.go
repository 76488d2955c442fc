package ui

import (
	"fmt"
	"time"

	"mcpanel/pkg/sdk"
)

func StatusIcon(status string) string {
	switch status {
	case "RUNNING":
		return "🟢"
	case "STARTING":
		return "🟡"
	case "STOPPING":
		return "🟠"
	case "CRASHED":
		return "💥"
	default:
		return "🔴"
	}
}

// DescribeVersion renders "forge 1.20.1 (47.2.0)" or "vanilla 1.21".
func DescribeVersion(s sdk.Server) string {
	if s.ModloaderVersion != nil && *s.ModloaderVersion != "" {
		return fmt.Sprintf("%s %s (%s)", s.Type, s.MCVersion, *s.ModloaderVersion)
	}
	return fmt.Sprintf("%s %s", s.Type, s.MCVersion)
}

func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// EventServer returns the server an event refers to. Renames match both names.
func EventServer(ev sdk.Event) []string {
	if ev.Event == "server_renamed" {
		return []string{ev.String("old_name"), ev.String("new_name")}
	}
	return []string{ev.String("server_name")}
}

// DescribeEvent turns an event into one human readable line without styling.
func DescribeEvent(ev sdk.Event) string {
	player := ev.String("player_name")
	reason := ev.String("reason")

	switch ev.Event {
	case "server_starting":
		return "starting"
	case "server_started":
		return "started"
	case "server_stopping":
		return "stopping"
	case "server_stopped":
		return "stopped"
	case "server_crashed":
		return "crashed"
	case "server_created":
		return fmt.Sprintf("created (%s %s)", ev.String("type"), ev.String("mc_version"))
	case "server_deleted":
		return "deleted"
	case "server_renamed":
		return fmt.Sprintf("renamed %s -> %s", ev.String("old_name"), ev.String("new_name"))
	case "console_message_received":
		return ev.String("message")
	case "console_log_received":
		return ev.String("log")
	case "player_joined":
		return player + " joined"
	case "player_left":
		return player + " left"
	case "player_kicked":
		return fmt.Sprintf("%s was kicked: %s", player, reason)
	case "player_banned":
		return fmt.Sprintf("%s was banned: %s", player, reason)
	case "player_pardoned":
		return player + " was pardoned"
	default:
		return ev.Event
	}
}

func eventTime(ev sdk.Event) string {
	ts, err := time.Parse(time.RFC3339Nano, ev.String("timestamp"))
	if err != nil {
		return "--:--:--"
	}
	return ts.Local().Format("15:04:05")
}

func renderEvent(ev sdk.Event) string {
	text := DescribeEvent(ev)
	switch ev.Event {
	case "server_started", "player_joined", "server_created":
		text = okStyle.Render(text)
	case "server_starting", "server_stopping", "player_kicked", "player_pardoned":
		text = warnStyle.Render(text)
	case "server_crashed", "player_banned", "server_deleted":
		text = errStyle.Render(text)
	}

	name := EventServer(ev)[0]
	return fmt.Sprintf("%s %s %s", timeStyle.Render(eventTime(ev)), serverStyle.Render("["+name+"]"), text)
}
