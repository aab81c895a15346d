// Package common provides shared constants, types, and utilities
// used across the VPN client.
package common

import (
	"os"
	"path/filepath"
)

// ResolveConfigPath returns path, or ConfigFileName in the working directory
// when path is empty.
func ResolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	return ConfigFileName
}

// SiblingPath returns name placed in the same directory as configPath.
// The audit log and history database live next to the config file.
func SiblingPath(configPath, name string) string {
	return filepath.Join(filepath.Dir(ResolveConfigPath(configPath)), name)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir ensures a directory exists, creating it if necessary.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}
