package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the fields tealeaf needs to talk to the forum API and
// size its cache.
type Config struct {
	APIBase string

	PollInterval time.Duration

	MaxThreads        int
	MaxPostsPerThread int
}

const (
	defaultConfigPath   = "~/.config/tealeaf/config.toml"
	defaultAPIBase      = "127.0.0.1:8939"
	defaultPollInterval = 30 * time.Second

	defaultMaxThreads        = 1000
	defaultMaxPostsPerThread = 5000

	envAPIBase = "TEALEAF_API_BASE"
)

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBase:           defaultAPIBase,
		PollInterval:      defaultPollInterval,
		MaxThreads:        defaultMaxThreads,
		MaxPostsPerThread: defaultMaxPostsPerThread,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase           string `toml:"api_base"`
		PollIntervalSecs  int    `toml:"poll_interval_seconds"`
		MaxThreads        int    `toml:"max_threads"`
		MaxPostsPerThread int    `toml:"max_posts_per_thread"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if base := strings.TrimSpace(raw.APIBase); base != "" {
		cfg.APIBase = base
	}
	if raw.PollIntervalSecs > 0 {
		cfg.PollInterval = time.Duration(raw.PollIntervalSecs) * time.Second
	}
	if raw.MaxThreads > 0 {
		cfg.MaxThreads = raw.MaxThreads
	}
	if raw.MaxPostsPerThread > 0 {
		cfg.MaxPostsPerThread = raw.MaxPostsPerThread
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if base := strings.TrimSpace(os.Getenv(envAPIBase)); base != "" {
		cfg.APIBase = base
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
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
