package config

import (
	"os"
	"path/filepath"
)

const defaultRuntimePath = ".workbot"

func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("WORKBOT_RUNTIME_PATH"))
}

// resolveRuntimePath anchors relative runtime paths at the user's home directory.
func resolveRuntimePath(path string) string {
	if path == "" {
		path = defaultRuntimePath
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
