// Package utils holds the file helpers shared by the mycc commands.
package utils

import (
	"os"
	"path/filepath"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// #include paths resolve from here
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadSource reads a source file and returns its text along with the
// directory its includes are resolved from.
func ReadSource(relPath string) (src string, baseDir string, err error) {
	fullPath, baseDir, err := GetPathInfo(relPath)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", "", err
	}
	return string(data), baseDir, nil
}

// ProjectPath resolves name against the project directory unless it is
// already absolute.
func ProjectPath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
