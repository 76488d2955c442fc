package jvm

import "mcpanel/internal/version"

// RequiredMajor returns the Java major version a Minecraft release needs.
// 1.20.5+ -> Java 21
// 1.18+   -> Java 17
// < 1.18  -> Java 8
func RequiredMajor(mc version.Version) int {
	if mc.Major != 1 {
		return 21
	}

	switch {
	case mc.Minor >= 21, mc.Minor == 20 && mc.Patch >= 5:
		return 21
	case mc.Minor >= 18:
		return 17
	default:
		return 8
	}
}
