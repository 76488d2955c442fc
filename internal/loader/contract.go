package loader

import (
	"context"

	"mcpanel/internal/version"
)

// ServerLoader installs the files a server type needs into destDir.
type ServerLoader interface {
	Install(ctx context.Context, mc version.Version, modloader *version.Version, destDir string) error
}

// JavaResolver picks the java binary for a required major version.
type JavaResolver interface {
	JavaFor(ctx context.Context, major int) (string, error)
}

type fixedJava string

func (f fixedJava) JavaFor(context.Context, int) (string, error) { return string(f), nil }
