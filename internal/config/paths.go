// Package config resolves application directories and layered settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const AppSlug = "folio"

type Paths struct {
	BaseDir       string
	DBPath        string
	CoverCacheDir string
}

// ResolvePaths uses the user config dir unless baseOverride is set, and
// creates the directories it returns.
func ResolvePaths(appSlug string, baseOverride string) (Paths, error) {
	baseDir := strings.TrimSpace(baseOverride)
	if baseDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return Paths{}, fmt.Errorf("resolve user config dir: %w", err)
		}
		baseDir = filepath.Join(configDir, appSlug)
	}

	paths := PathsFor(baseDir)

	if err := os.MkdirAll(paths.BaseDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create app config dir: %w", err)
	}

	if err := os.MkdirAll(paths.CoverCacheDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create cover cache dir: %w", err)
	}

	return paths, nil
}

// PathsFor lays out the files under baseDir without touching the disk.
func PathsFor(baseDir string) Paths {
	return Paths{
		BaseDir:       baseDir,
		DBPath:        filepath.Join(baseDir, "themes.db"),
		CoverCacheDir: filepath.Join(baseDir, "covers"),
	}
}
