package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree creates files below root. Keys are slash-separated relative
// paths; a key ending in "/" creates an empty directory.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// collectGroups walks root and returns every visited group.
func collectGroups(t *testing.T, w *Walker, root string) []DirectoryGroup {
	t.Helper()
	var groups []DirectoryGroup
	err := w.Walk(root, func(g DirectoryGroup) error {
		groups = append(groups, g)
		return nil
	})
	require.NoError(t, err)
	return groups
}

func groupPaths(groups []DirectoryGroup) []string {
	paths := make([]string, 0, len(groups))
	for _, g := range groups {
		paths = append(paths, g.Path)
	}
	return paths
}

// recordingLogger keeps formatted warnings for assertions.
type recordingLogger struct {
	nopLogger
	warnings []string
}

func (l *recordingLogger) Warn(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}
