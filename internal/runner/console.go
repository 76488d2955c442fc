package runner

import (
	"regexp"
	"strings"
)

type LineKind int

const (
	LineLog LineKind = iota
	LineStarted
	LineChat
	LineJoined
	LineLeft
	LineKicked
	LineBanned
	LinePardoned
)

// ConsoleLine is what a single line of server output means.
type ConsoleLine struct {
	Kind    LineKind
	Player  string
	Reason  string
	Message string
}

var (
	// Vanilla: "[12:00:00] [Server thread/INFO]: ..."
	// Forge:   "[01Jan2024 12:00:00.000] [Server thread/INFO] [net.minecraft.server.MinecraftServer/]: ..."
	logPrefix = regexp.MustCompile(`^(?:\[[^\]]*\]\s*)+:\s?`)

	reDone     = regexp.MustCompile(`^Done \([0-9.,]+s\)!`)
	reChat     = regexp.MustCompile(`^<([A-Za-z0-9_]{1,16})> (.*)$`)
	reJoined   = regexp.MustCompile(`^([A-Za-z0-9_]{1,16}) joined the game$`)
	reLeft     = regexp.MustCompile(`^([A-Za-z0-9_]{1,16}) left the game$`)
	reKicked   = regexp.MustCompile(`^Kicked ([A-Za-z0-9_]{1,16}): (.*)$`)
	reBanned   = regexp.MustCompile(`^Banned ([A-Za-z0-9_]{1,16}): (.*)$`)
	rePardoned = regexp.MustCompile(`^Unbanned ([A-Za-z0-9_]{1,16})$`)
)

func ParseLine(line string) ConsoleLine {
	body := strings.TrimSpace(logPrefix.ReplaceAllString(line, ""))

	if reDone.MatchString(body) {
		return ConsoleLine{Kind: LineStarted, Message: body}
	}
	if m := reChat.FindStringSubmatch(body); m != nil {
		return ConsoleLine{Kind: LineChat, Player: m[1], Message: m[2]}
	}
	if m := reJoined.FindStringSubmatch(body); m != nil {
		return ConsoleLine{Kind: LineJoined, Player: m[1]}
	}
	if m := reLeft.FindStringSubmatch(body); m != nil {
		return ConsoleLine{Kind: LineLeft, Player: m[1]}
	}
	if m := reKicked.FindStringSubmatch(body); m != nil {
		return ConsoleLine{Kind: LineKicked, Player: m[1], Reason: m[2]}
	}
	if m := reBanned.FindStringSubmatch(body); m != nil {
		return ConsoleLine{Kind: LineBanned, Player: m[1], Reason: m[2]}
	}
	if m := rePardoned.FindStringSubmatch(body); m != nil {
		return ConsoleLine{Kind: LinePardoned, Player: m[1]}
	}
	return ConsoleLine{Kind: LineLog, Message: body}
}
