package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Mirror backend names accepted by the [mirror] table.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the resolved taskboard configuration.
type Config struct {
	APIURL       string
	LogFile      string
	LogLevel     logrus.Level
	Assignees    []string
	RefreshEvery time.Duration // zero disables background refresh
	Mirror       MirrorConfig
}

// MirrorConfig selects and locates the local mirror backend.
type MirrorConfig struct {
	Backend     string
	Path        string
	RedisURL    string
	RedisPrefix string
}

const (
	defaultConfigPath  = "~/.config/taskboard/config.toml"
	defaultEnvPath     = ".env"
	defaultAPIURL      = "http://127.0.0.1:3000"
	defaultLogFile     = "~/.local/state/taskboard/taskboard.log"
	defaultMirrorPath  = "~/.local/state/taskboard/mirror.db"
	defaultRedisURL    = "redis://127.0.0.1:6379/0"
	defaultRedisPrefix = "taskboard:"
)

// Environment overrides. The process environment wins over the .env file,
// which wins over the TOML file.
const (
	EnvAPIURL        = "TASKBOARD_API_URL"
	EnvMirrorBackend = "TASKBOARD_MIRROR_BACKEND"
	EnvRedisURL      = "TASKBOARD_REDIS_URL"
	EnvLogLevel      = "TASKBOARD_LOG_LEVEL"
)

type rawConfig struct {
	APIURL         string   `toml:"api_url"`
	LogFile        string   `toml:"log_file"`
	LogLevel       string   `toml:"log_level"`
	Assignees      []string `toml:"assignees"`
	RefreshSeconds *int     `toml:"refresh_seconds"`
	Mirror         struct {
		Backend     string `toml:"backend"`
		Path        string `toml:"path"`
		RedisURL    string `toml:"redis_url"`
		RedisPrefix string `toml:"redis_prefix"`
	} `toml:"mirror"`
}

// Load reads the TOML config at path (default ~/.config/taskboard/config.toml)
// and applies overrides from envPath (default ./.env) and the environment.
// Missing files fall back to defaults.
func Load(path, envPath string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	env, err := readEnvFile(envPath)
	if err != nil {
		return Config{}, err
	}
	override := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = v
			return
		}
		if v, ok := env[key]; ok && strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	override(EnvAPIURL, &raw.APIURL)
	override(EnvMirrorBackend, &raw.Mirror.Backend)
	override(EnvRedisURL, &raw.Mirror.RedisURL)
	override(EnvLogLevel, &raw.LogLevel)

	return resolve(raw)
}

func resolve(raw rawConfig) (Config, error) {
	cfg := Config{
		APIURL:       orDefault(raw.APIURL, defaultAPIURL),
		LogFile:      mustExpand(orDefault(raw.LogFile, defaultLogFile)),
		LogLevel:     logrus.InfoLevel,
		RefreshEvery: 30 * time.Second,
	}

	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: log_level: %w", err)
		}
		cfg.LogLevel = parsed
	}

	if raw.RefreshSeconds != nil {
		if *raw.RefreshSeconds < 0 {
			return Config{}, fmt.Errorf("parse config: refresh_seconds must not be negative")
		}
		cfg.RefreshEvery = time.Duration(*raw.RefreshSeconds) * time.Second
	}

	for _, name := range raw.Assignees {
		if name = strings.TrimSpace(name); name != "" {
			cfg.Assignees = append(cfg.Assignees, name)
		}
	}

	backend := strings.ToLower(orDefault(raw.Mirror.Backend, BackendSQLite))
	switch backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return Config{}, fmt.Errorf("parse config: unknown mirror backend %q", backend)
	}
	cfg.Mirror = MirrorConfig{
		Backend:     backend,
		Path:        mustExpand(orDefault(raw.Mirror.Path, defaultMirrorPath)),
		RedisURL:    orDefault(raw.Mirror.RedisURL, defaultRedisURL),
		RedisPrefix: orDefault(raw.Mirror.RedisPrefix, defaultRedisPrefix),
	}
	return cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultEnvPath
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return values, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
