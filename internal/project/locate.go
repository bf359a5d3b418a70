package project

import (
	"os"
	"path/filepath"
)

// ManifestFilename is the file that marks the root of a Scribe project.
const ManifestFilename = "project.xml"

// Locate walks upward from startDir looking for a directory that contains
// the project manifest. It returns the first such directory. Absence of a
// manifest anywhere up to the filesystem root is a normal outcome, reported
// via ok=false rather than an error.
func Locate(startDir string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}
	for {
		if st, err := os.Stat(filepath.Join(dir, ManifestFilename)); err == nil && !st.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the filesystem root without a match.
			return "", false
		}
		dir = parent
	}
}
