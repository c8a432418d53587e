package database

import (
	"os"
	"path/filepath"

	"github.com/kodeklip/kodeklip/internal/config"
)

// GetInfo inspects the catalog file and its directory without opening a
// connection. An empty dbPath resolves to the per-user default location.
func GetInfo(dbPath string) Info {
	path := dbPath
	if path == "" {
		path = config.GetDBPath()
	}

	info := Info{
		DatabasePath: path,
		DataDir:      filepath.Dir(path),
	}

	if stat, err := os.Stat(info.DataDir); err == nil && stat.IsDir() {
		info.DirExists = true
	}

	if stat, err := os.Stat(path); err == nil {
		info.Exists = true
		info.SizeMB = float64(stat.Size()) / (1024 * 1024)
	}

	return info
}
