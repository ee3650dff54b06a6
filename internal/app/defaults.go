package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - DUMP_CONFIG_PATH: config file location (default: ~/.config/dump.toml)
//   - DUMP_HOME: base directory for dump data (default: ~/.local/share/dump)
//
// The canvas document itself defaults to ~/Documents/dump_data.json.
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	return map[string]string{
		"config_path":   configPath,
		"base_dir":      baseDir,
		"log_dir":       filepath.Join(baseDir, "log"),
		"document_path": filepath.Join(homeDir, "Documents", "dump_data.json"),
	}, nil
}

// getConfigPath returns the config file path, checking DUMP_CONFIG_PATH env var first,
// then falling back to the default ~/.config/dump.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("DUMP_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "dump.toml"), nil
}

// getBaseDir returns the base directory for dump data, checking DUMP_HOME env var first,
// then falling back to the XDG default ~/.local/share/dump.
func getBaseDir() (string, error) {
	if path := os.Getenv("DUMP_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "dump"), nil
}
