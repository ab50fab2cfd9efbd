package paths

import (
	"os"
	"path/filepath"
)

// Default returns the default data directory, ~/.mingle.
func Default() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mingle")
}

// DBPath returns the chat store path inside the data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "mingle.db")
}

// ConfigPath returns the config file path inside the data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.toml")
}

// LogDir returns the log directory inside the data directory.
func LogDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}

// LogPath returns the daemon log file path.
func LogPath(dataDir string) string {
	return filepath.Join(LogDir(dataDir), "mingled.log")
}

// EnsureDir creates the data directory tree with proper permissions.
func EnsureDir(dataDir string) error {
	dirs := []string{
		dataDir,
		LogDir(dataDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
