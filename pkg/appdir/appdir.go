// Package appdir resolves the per-user toyblock directory that holds the
// run journal and an optional toyblock.yaml.
package appdir

import (
	"log"
	"os"
	"path"
)

const dirName = ".toyblock"

var appDirCache string

// AppDir returns $HOME/.toyblock.
func AppDir() string {
	if appDirCache == "" {
		s, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("%v", err)
		}
		appDirCache = path.Join(s, dirName)
	}
	return appDirCache
}

// Resolve joins a relative name onto AppDir. Absolute paths are returned as is.
func Resolve(name string) string {
	if path.IsAbs(name) {
		return name
	}
	return path.Join(AppDir(), name)
}

// Ensure creates AppDir if it does not exist yet.
func Ensure() error {
	dir := AppDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.Mkdir(dir, 0755)
	}
	return nil
}
