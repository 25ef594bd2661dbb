package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirName is the directory created next to a project to hold its notes.
const DataDirName = ".notehub"

// FindDataDir walks upwards from startDir looking for a DataDirName directory
// and returns its absolute path.
func FindDataDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, DataDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no %s directory found above %s", DataDirName, startDir)
}
