// Package storage provides persistent storage for engine profiles and match standings.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

const appName = "onitama"

// userBase says where a platform keeps per-user application data: the
// environment variable that overrides it, then the path under the home
// directory.
type userBase struct {
	env  string
	home []string
}

var userBases = map[string]userBase{
	"darwin":  {home: []string{"Library", "Application Support"}},
	"windows": {env: "APPDATA", home: []string{"AppData", "Roaming"}},
}

// xdgBase applies to every other GOOS.
var xdgBase = userBase{env: "XDG_DATA_HOME", home: []string{".local", "share"}}

func (b userBase) resolve() (string, error) {
	if b.env != "" {
		if dir := os.Getenv(b.env); dir != "" {
			return dir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate data directory: %w", err)
	}
	return filepath.Join(append([]string{home}, b.home...)...), nil
}

// DataDir returns root when it is set and the per-user data directory
// for the application otherwise, creating it if missing.
func DataDir(root string) (string, error) {
	if root == "" {
		base, ok := userBases[runtime.GOOS]
		if !ok {
			base = xdgBase
		}
		dir, err := base.resolve()
		if err != nil {
			return "", err
		}
		root = filepath.Join(dir, appName)
	}
	return ensureDir(root)
}

// DatabaseDir returns the BadgerDB directory inside DataDir(root).
func DatabaseDir(root string) (string, error) {
	dir, err := DataDir(root)
	if err != nil {
		return "", err
	}
	dbDir, err := ensureDir(filepath.Join(dir, "db"))
	if err != nil {
		return "", err
	}
	log.Debug().Str("dir", dbDir).Msg("database directory")
	return dbDir, nil
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}
