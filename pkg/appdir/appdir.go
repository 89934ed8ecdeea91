// Package appdir locates the per-user application directory (~/.csparve-go)
// used for the log database and default configuration.
package appdir

import (
	"log"
	"os"
	"path"
)

var appDirCache string

func AppDir() string {
	if appDirCache == "" {
		s, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("%v", err)
		}
		appDirCache = path.Join(s, ".csparve-go")
	}
	return appDirCache
}

func ensureDirectory() {
	dir := AppDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		os.Mkdir(dir, 0755)
	}
}

func init() {
	ensureDirectory()
}
