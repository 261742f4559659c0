package main

import (
	"path/filepath"
	"strings"
)

// repoNameFromURL returns the last path segment of a source location without
// a ".git" suffix. Both URLs and local paths are accepted.
func repoNameFromURL(source string) string {
	trimmed := strings.TrimRight(source, "/\\")
	if i := strings.LastIndexAny(trimmed, "/\\:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	name := strings.TrimSuffix(trimmed, ".git")
	if name == "" || name == "." || name == ".." {
		if abs, err := filepath.Abs(source); err == nil {
			name = filepath.Base(abs)
		}
	}
	return name
}

// outputFileName builds "<repo>_<branch>_summary.md". Path separators in the
// branch are replaced so the result is always a single file name.
func outputFileName(repoName, branch string) string {
	b := branch
	if b == "" {
		b = "default"
	}
	b = strings.NewReplacer("/", "_", "\\", "_").Replace(b)
	return repoName + "_" + b + "_summary.md"
}
