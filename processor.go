package main

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"
)

// Walker produces DirectoryGroups in pre-order, skipping ignored directory names.
type Walker struct {
	ignoreDirs    map[string]struct{}
	ignoreMatcher gitignore.IgnoreMatcher
	exclude       map[string]struct{} // Absolute, cleaned file paths
	log           Logger
}

// NewWalker builds a walker that skips the given directory names wherever they occur.
func NewWalker(ignoreDirs []string, log Logger) *Walker {
	if log == nil {
		log = nopLogger{}
	}
	w := &Walker{ignoreDirs: make(map[string]struct{}, len(ignoreDirs)), log: log}
	for _, name := range ignoreDirs {
		w.ignoreDirs[name] = struct{}{}
	}
	return w
}

// UseGitIgnore loads root/.gitignore, if present, and skips entries it matches.
func (w *Walker) UseGitIgnore(root string) {
	gitIgnorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitIgnorePath); err != nil {
		return
	}
	matcher, err := gitignore.NewGitIgnore(gitIgnorePath)
	if err != nil {
		w.log.Warn("could not parse .gitignore file %s: %v", gitIgnorePath, err)
		return
	}
	w.ignoreMatcher = matcher
}

// Exclude skips the given files wherever the walk meets them. It is used
// to keep the report being written out of its own input.
func (w *Walker) Exclude(paths ...string) {
	if w.exclude == nil {
		w.exclude = make(map[string]struct{}, len(paths))
	}
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			w.exclude[abs] = struct{}{}
		}
	}
}

func (w *Walker) excluded(full string) bool {
	if len(w.exclude) == 0 {
		return false
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return false
	}
	_, ok := w.exclude[abs]
	return ok
}

// Walk calls visit for root and then for every non-ignored descendant directory.
// A directory is visited before any of its descendants, and siblings are
// visited in lexical order. Unreadable entries are skipped with a warning.
// Only an error returned by visit stops the walk.
func (w *Walker) Walk(root string, visit func(DirectoryGroup) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("error accessing path %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	return w.walkDir(root, ".", visit)
}

func (w *Walker) walkDir(abs, rel string, visit func(DirectoryGroup) error) error {
	entries, err := os.ReadDir(abs)
	if err != nil {
		w.log.Warn("error listing directory %s: %v", abs, err)
		// os.ReadDir may still return the entries it read before failing.
		if len(entries) == 0 {
			return nil
		}
	}

	group := DirectoryGroup{Path: rel}
	var subdirs []fs.DirEntry

	for _, entry := range entries {
		name := entry.Name()
		isDir, ok := w.resolveType(filepath.Join(abs, name), entry)
		if !ok {
			continue
		}

		// The matcher resolves paths against the directory holding .gitignore.
		if w.ignoreMatcher != nil && w.ignoreMatcher.Match(filepath.Join(abs, name), isDir) {
			continue
		}

		if isDir {
			if _, ignored := w.ignoreDirs[name]; ignored {
				continue
			}
			subdirs = append(subdirs, entry)
			continue
		}
		if w.excluded(filepath.Join(abs, name)) {
			continue
		}
		group.Files = append(group.Files, FileEntry{Name: name, Ext: extensionOf(name), Dir: rel})
	}

	if err := visit(group); err != nil {
		return err
	}

	for _, sub := range subdirs {
		if err := w.walkDir(filepath.Join(abs, sub.Name()), path.Join(rel, sub.Name()), visit); err != nil {
			return err
		}
	}
	return nil
}

// resolveType reports whether entry is a directory to descend into (isDir)
// or a regular file, and ok=false for anything to skip. Symlinked
// directories are never followed.
func (w *Walker) resolveType(full string, entry fs.DirEntry) (isDir bool, ok bool) {
	mode := entry.Type()
	switch {
	case mode.IsDir():
		return true, true
	case mode.IsRegular():
		return false, true
	case mode&fs.ModeSymlink != 0:
		target, err := os.Stat(full)
		if err != nil {
			w.log.Warn("skipping broken link %s: %v", full, err)
			return false, false
		}
		if target.Mode().IsRegular() {
			return false, true
		}
		return false, false
	default:
		// Sockets, devices and pipes.
		return false, false
	}
}
