package main

import "fmt"

// FileEntry is a single file discovered during traversal.
type FileEntry struct {
	Name string // Base name, e.g. "Main.java"
	Ext  string // Lowercased extension including the dot, "" if none
	Dir  string // Containing directory relative to the repository root ("." for the root)
}

// RelPath returns the slash-separated path of the entry relative to the repository root.
func (f FileEntry) RelPath() string {
	if f.Dir == "." || f.Dir == "" {
		return f.Name
	}
	return f.Dir + "/" + f.Name
}

// DirectoryGroup holds the files directly contained in one directory.
// Subdirectories are reported as separate groups.
type DirectoryGroup struct {
	Path  string // Relative, slash-separated; "." for the root
	Files []FileEntry
}

// Label is the name used for the directory in progress lines and asset headings.
func (g DirectoryGroup) Label() string {
	if g.Path == "." || g.Path == "" {
		return "(Root)"
	}
	return g.Path
}

// Counters tallies processed files for the summary.
type Counters struct {
	Textual int
	Asset   int
}

// Add returns the sum of both counters.
func (c Counters) Add(o Counters) Counters {
	return Counters{Textual: c.Textual + o.Textual, Asset: c.Asset + o.Asset}
}

// Summary holds aggregated information about a finished run.
type Summary struct {
	Counters
	Directories int    // Directories visited, including those without output
	Digest      uint64 // xxh3 of all rendered section bytes
	TotalTokens int    // Populated if token counting is enabled
	Output      string
}

// AcquisitionError reports that the source could not be materialized locally.
type AcquisitionError struct {
	Source string
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// DestinationError reports that the output document could not be created or written.
type DestinationError struct {
	Path string
	Err  error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *DestinationError) Unwrap() error { return e.Err }
