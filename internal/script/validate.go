package script

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
)

// TagRegistry answers which tag names are unknown.
type TagRegistry interface {
	MissingTags(ctx context.Context, names []string) ([]string, error)
}

// FileChecker reports whether a source file can be read.
type FileChecker interface {
	Check(path string) error
}

// Validate checks every referenced tag against the registry and every file
// path, resolved against workDir, against the filesystem. Both checks always
// run to completion; a *ValidationError carries everything that failed.
// Other errors mean a lookup itself could not be performed.
func Validate(ctx context.Context, doc *Document, workDir string, registry TagRegistry, files FileChecker) error {
	missing, err := registry.MissingTags(ctx, doc.Tags.Sorted())
	if err != nil {
		return fmt.Errorf("verify tags: %w", err)
	}
	sort.Strings(missing)

	var unreadable []string
	for _, f := range doc.Files {
		if err := files.Check(SourcePath(workDir, f.Path)); err != nil {
			unreadable = append(unreadable, f.Path)
		}
	}

	if len(missing) == 0 && len(unreadable) == 0 {
		return nil
	}
	return &ValidationError{UnknownTags: missing, UnreadableFiles: unreadable}
}

// SourcePath resolves a script path against the working directory. Absolute
// paths are used as-is.
func SourcePath(workDir, path string) string {
	if filepath.IsAbs(path) || workDir == "" {
		return path
	}
	return filepath.Join(workDir, path)
}
