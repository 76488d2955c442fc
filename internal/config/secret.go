package config

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	secretFileName = ".mcpanel_secret"
	envSecretKey   = "MCPANEL_SECRET_KEY"
)

// LoadOrGenerateSecret returns the token signing secret. The environment wins;
// otherwise a random secret is persisted in configDir on first use.
func LoadOrGenerateSecret(configDir string) string {
	if secret := os.Getenv(envSecretKey); secret != "" {
		return secret
	}

	secretPath := filepath.Join(configDir, secretFileName)
	if data, err := os.ReadFile(secretPath); err == nil {
		if secret := strings.TrimSpace(string(data)); secret != "" {
			return secret
		}
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		slog.Error("could not generate secret", "error", err)
		return ""
	}
	secret := hex.EncodeToString(b)

	if err := os.WriteFile(secretPath, []byte(secret), 0600); err != nil {
		slog.Warn("could not persist secret, tokens will not survive a restart", "path", secretPath, "error", err)
	}
	return secret
}
