package config

import (
	"os"
	"path/filepath"
)

// homeEnvVar overrides the default home directory when set.
const homeEnvVar = "PLANLOOM_HOME"

// ResolveHomeDir picks the planloom home directory. An explicit value wins,
// then the PLANLOOM_HOME environment variable, then ~/.planloom.
func ResolveHomeDir(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(homeEnvVar); env != "" {
		return env
	}
	return DefaultHomeDir()
}

// DefaultHomeDir returns ~/.planloom, or a directory under the system temp
// dir when the user home cannot be determined.
func DefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".planloom")
	}
	return filepath.Join(userHome, ".planloom")
}

// DefaultConfigPath returns the config file path inside a home directory.
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}
