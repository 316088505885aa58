// Package locate finds package manifests on disk.
//
// Lookups follow the Node.js resolution walk: starting at a directory, each
// ancestor's node_modules directory is checked in turn, closest first.
// Filesystem errors never abort a walk; a level that cannot be inspected is
// treated as having no match.
package locate

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/renoma/pkg/errors"
	"github.com/matzehuels/renoma/pkg/manifest"
)

// InstallDir is the per-package directory holding installed dependencies.
const InstallDir = "node_modules"

// FindNearestManifest walks upward from startDir and returns the first
// package.json found, or false once the filesystem root has been checked.
func FindNearestManifest(startDir string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, manifest.FileName)
		if isFile(candidate) {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// FindInstalledManifest walks upward from baseDir looking for
// node_modules/<name>/package.json and returns the symlink-resolved absolute
// path of the closest match.
//
// Scoped names such as "@scope/pkg" are a single identifier: they resolve
// to node_modules/@scope/pkg at each level. Names that fail
// [errors.ValidatePackageName] are never resolved.
func FindInstalledManifest(name, baseDir string) (string, bool) {
	if errors.ValidatePackageName(name) != nil {
		return "", false
	}
	dir, err := filepath.Abs(baseDir)
	if err != nil {
		return "", false
	}
	rel := filepath.Join(InstallDir, filepath.FromSlash(name), manifest.FileName)
	for {
		candidate := filepath.Join(dir, rel)
		if isFile(candidate) {
			if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
				return resolved, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// isFile reports whether path exists and is not a directory. Permission
// errors read as "does not exist".
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
