package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mingle-app/mingle/internal/paths"
)

// DefaultListenAddr is the daemon's API bind address when nothing else is set.
const DefaultListenAddr = "127.0.0.1:8640"

// Config represents <data-dir>/config.toml.
type Config struct {
	ListenAddr string `toml:"listen_addr"`
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// ResolveDataDir determines the data directory using precedence:
// 1. flagOverride (--data-dir flag)
// 2. MINGLE_DATA_DIR environment variable
// 3. ~/.mingle
func ResolveDataDir(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if env := os.Getenv("MINGLE_DATA_DIR"); env != "" {
		return env
	}
	return paths.Default()
}

// ResolveListenAddr determines the API listen address using precedence:
// 1. flagOverride (--listen flag)
// 2. MINGLE_LISTEN_ADDR environment variable
// 3. config.toml listen_addr
// 4. DefaultListenAddr
func ResolveListenAddr(dataDir, flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if env := os.Getenv("MINGLE_LISTEN_ADDR"); env != "" {
		return env
	}
	cfg, err := Load(paths.ConfigPath(dataDir))
	if err == nil && cfg.ListenAddr != "" {
		return cfg.ListenAddr
	}
	return DefaultListenAddr
}
