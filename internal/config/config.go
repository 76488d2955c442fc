package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigName    = "config.json"
	yamlConfigName       = "config.yaml"
	defaultServersDir    = "servers"
	defaultStaticDir     = "client"
	defaultRuntimesDir   = "runtimes"
	defaultDatabaseFile  = "mcpanel.db"
	defaultPort          = 5001
	defaultTokenTTL      = 60
	defaultRememberTTL   = 24 * 30
	defaultStopTimeout   = 60
	defaultJavaPath      = "java"
	defaultRatePerMinute = 30
	defaultRateBurst     = 10
	defaultManifestURL   = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	defaultForgeAPIURL   = "https://bmclapi2.bangbang93.com/forge/"
	defaultLogLevel      = "info"
	defaultLogFormat     = "text"
	envPort              = "MCPANEL_PORT"
	envStaticPath        = "MCPANEL_STATIC_PATH"
	envLogLevel          = "MCPANEL_LOG_LEVEL"
	envLogFormat         = "MCPANEL_LOG_FORMAT"
	envJavaPath          = "MCPANEL_JAVA_PATH"
	envEnvironment       = "MCPANEL_ENV"
)

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

type RateLimitConfig struct {
	PerMinute int `json:"per_minute" yaml:"per_minute"`
	Burst     int `json:"burst" yaml:"burst"`
}

type Config struct {
	ServersPath        string          `json:"servers_path" yaml:"servers_path"`
	DatabasePath       string          `json:"database_path" yaml:"database_path"`
	StaticPath         string          `json:"static_path" yaml:"static_path"`
	Port               int             `json:"port" yaml:"port"`
	JavaPath           string          `json:"java_path" yaml:"java_path"`
	RuntimesPath       string          `json:"runtimes_path" yaml:"runtimes_path"`
	TokenTTLMinutes    int             `json:"token_ttl_minutes" yaml:"token_ttl_minutes"`
	RememberTTLHours   int             `json:"remember_ttl_hours" yaml:"remember_ttl_hours"`
	StopTimeoutSeconds int             `json:"stop_timeout_seconds" yaml:"stop_timeout_seconds"`
	MojangManifestURL  string          `json:"mojang_manifest_url" yaml:"mojang_manifest_url"`
	ForgeAPIURL        string          `json:"forge_api_url" yaml:"forge_api_url"`
	Log                LogConfig       `json:"log" yaml:"log"`
	RateLimit          RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
}

func IsDev() bool {
	return strings.EqualFold(os.Getenv(envEnvironment), "dev")
}

// GetPort returns the daemon port from the environment, falling back to the default.
func GetPort() int {
	if v := os.Getenv(envPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

// AppName is the name of the per-user configuration directory.
func AppName() string {
	if IsDev() {
		return "mcpanel-dev"
	}
	return "mcpanel"
}

func LoadConfig(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, err
	}

	cfg := defaults(configDir)

	yamlPath := filepath.Join(configDir, yamlConfigName)
	jsonPath := filepath.Join(configDir, defaultConfigName)

	switch {
	case fileExists(yamlPath):
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", yamlPath, err)
		}
	case fileExists(jsonPath):
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", jsonPath, err)
		}
	default:
		if err := writeDefaultConfig(jsonPath, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaults(configDir string) *Config {
	return &Config{
		ServersPath:        filepath.Join(configDir, defaultServersDir),
		DatabasePath:       filepath.Join(configDir, defaultDatabaseFile),
		StaticPath:         filepath.Join(configDir, defaultStaticDir),
		Port:               defaultPort,
		JavaPath:           defaultJavaPath,
		RuntimesPath:       filepath.Join(configDir, defaultRuntimesDir),
		TokenTTLMinutes:    defaultTokenTTL,
		RememberTTLHours:   defaultRememberTTL,
		StopTimeoutSeconds: defaultStopTimeout,
		MojangManifestURL:  defaultManifestURL,
		ForgeAPIURL:        defaultForgeAPIURL,
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		RateLimit: RateLimitConfig{
			PerMinute: defaultRatePerMinute,
			Burst:     defaultRateBurst,
		},
	}
}

func writeDefaultConfig(configPath string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv(envStaticPath); v != "" {
		cfg.StaticPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(envLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv(envJavaPath); v != "" {
		cfg.JavaPath = v
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.TokenTTLMinutes <= 0 || c.RememberTTLHours <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.StopTimeoutSeconds <= 0 {
		return fmt.Errorf("stop_timeout_seconds must be positive")
	}
	if c.RateLimit.PerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}
	if c.ServersPath == "" || c.DatabasePath == "" || c.StaticPath == "" {
		return fmt.Errorf("servers_path, database_path and static_path are required")
	}
	if c.JavaPath == "" {
		return fmt.Errorf("java_path is required")
	}
	if c.JavaPath == "auto" && c.RuntimesPath == "" {
		return fmt.Errorf("runtimes_path is required when java_path is auto")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
