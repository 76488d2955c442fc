package strategy

import (
	"fmt"

	"mcpanel/internal/domain"
)

const TypeForge = "forge"

// For returns the runner for a server type.
func For(serverType string) (ServerRunner, error) {
	switch serverType {
	case domain.TypeVanilla:
		return &VanillaRunner{JarName: "server.jar"}, nil
	case TypeForge:
		return &ForgeRunner{}, nil
	default:
		return nil, fmt.Errorf("no runner for server type %q", serverType)
	}
}
