// Package scaffold generates the starter files for a Scribe project:
// manifest, publication file, and .gitignore, plus a fresh Git repository.
package scaffold

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/scribe-press/scribe/internal/project"
)

const manifestTemplate = `<?xml version="1.0" encoding="utf-8"?>
<project>
  <targets>
    <target>
      <alias>web</alias>
      <format>html</format>
      <source>source/main.xml</source>
      <output-dir>output/web</output-dir>
      <publication>publication/publication.xml</publication>
    </target>
    <target>
      <alias>print</alias>
      <format>pdf</format>
      <source>source/main.xml</source>
      <output-dir>output/print</output-dir>
      <publication>publication/publication.xml</publication>
    </target>
  </targets>
</project>
`

const publicationTemplate = `<?xml version="1.0" encoding="utf-8"?>
<publication>
  <html/>
</publication>
`

const gitignoreTemplate = `output/
.scribe/
`

// Init writes the starter files into dir. Existing projects are left alone
// unless force is set, in which case colliding files are written under
// timestamped names for comparison. A Git repository is initialized when one
// is not already present.
func Init(dir string, force bool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if root, ok := project.Locate(dir); ok && !force {
		logger.Warn("A project already exists; no manifest will be generated", "root", root)
		logger.Warn("Use --force to re-initialize alongside the existing files")
		return nil
	}

	stamp := time.Now().Format("20060102-150405")

	manifestPath := collisionSafe(filepath.Join(dir, project.ManifestFilename), stamp, logger)
	if err := os.WriteFile(manifestPath, []byte(manifestTemplate), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	logger.Info("Generated project manifest", "path", manifestPath)

	pubPath := collisionSafe(filepath.Join(dir, "publication", "publication.xml"), stamp, logger)
	if err := os.MkdirAll(filepath.Dir(pubPath), 0o755); err != nil {
		return fmt.Errorf("create publication directory: %w", err)
	}
	if err := os.WriteFile(pubPath, []byte(publicationTemplate), 0o644); err != nil {
		return fmt.Errorf("write publication file: %w", err)
	}
	logger.Info("Created publication file", "path", pubPath)

	ignorePath := collisionSafe(filepath.Join(dir, ".gitignore"), stamp, logger)
	if err := os.WriteFile(ignorePath, []byte(gitignoreTemplate), 0o644); err != nil {
		return fmt.Errorf("write .gitignore: %w", err)
	}

	if _, err := git.PlainInit(dir, false); err != nil {
		if errors.Is(err, git.ErrRepositoryAlreadyExists) {
			logger.Debug("Git repository already present", "dir", dir)
		} else {
			logger.Warn("Could not initialize Git repository", "dir", dir, "error", err)
		}
	} else {
		logger.Info("Initialized Git repository", "dir", dir)
	}

	logger.Info("Success! Edit the manifest to point targets at your main source file", "manifest", manifestPath)
	return nil
}

// collisionSafe returns path unchanged when it is free, otherwise a sibling
// name carrying the timestamp so the existing file is preserved.
func collisionSafe(path, stamp string, logger *slog.Logger) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}
	ext := filepath.Ext(path)
	var alt string
	if base := filepath.Base(path); ext == base {
		// Dotfiles like .gitignore: the whole name is the "extension".
		alt = path + "-" + stamp
	} else {
		alt = path[:len(path)-len(ext)] + "-" + stamp + ext
	}
	logger.Warn("File already exists; writing suggested version alongside for comparison", "existing", path, "suggested", alt)
	return alt
}
