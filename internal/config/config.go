// Package config resolves the per-user storage locations for kodeklip.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetKodeklipDir resolves the base directory for all kodeklip storage. It
// checks KODEKLIP_DIR first, then XDG paths, and finally falls back to the
// user's home directory.
func GetKodeklipDir() string {
	if explicit := os.Getenv("KODEKLIP_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "kodeklip")
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "kodeklip")
}

// GetDBPath returns the absolute path to the SQLite catalog file.
func GetDBPath() string {
	return filepath.Join(GetKodeklipDir(), "index.db")
}

// GetReposDir returns the directory that holds one clone directory per alias.
func GetReposDir() string {
	return filepath.Join(GetKodeklipDir(), "repos")
}
