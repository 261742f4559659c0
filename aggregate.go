package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SectionKind distinguishes the two kinds of rendered sections.
type SectionKind int

const (
	ContentSection SectionKind = iota
	AssetListing
)

// OutputSection is one self-delimited unit of the report.
type OutputSection struct {
	Kind     SectionKind
	Heading  string   // File path for content, directory label for listings
	Language string   // Fence tag for content sections
	Body     string   // File text or failure marker
	Assets   []string // Sorted asset names for listings
}

// Aggregator turns one DirectoryGroup into its output sections.
type Aggregator struct {
	classifier *Classifier
	root       string
	maxSize    int64 // 0 for no limit
}

// NewAggregator creates an aggregator reading files below root.
func NewAggregator(classifier *Classifier, root string, maxSize int64) *Aggregator {
	return &Aggregator{classifier: classifier, root: root, maxSize: maxSize}
}

// Aggregate returns the group's sections, Textual files first in listing
// order followed by at most one asset listing, and the counts it contributed.
// Read failures are rendered inline and never returned.
func (a *Aggregator) Aggregate(group DirectoryGroup) ([]OutputSection, Counters) {
	var sections []OutputSection
	var assets []string
	var counts Counters

	for _, file := range group.Files {
		class := a.classifier.Classify(file.Name)
		switch class.Category {
		case Textual:
			sections = append(sections, OutputSection{
				Kind:     ContentSection,
				Heading:  file.RelPath(),
				Language: class.Language,
				Body:     a.readText(file),
			})
			counts.Textual++
		case Asset:
			assets = append(assets, file.Name)
		}
	}

	if len(assets) > 0 {
		sort.Strings(assets)
		sections = append(sections, OutputSection{
			Kind:    AssetListing,
			Heading: group.Label(),
			Assets:  assets,
		})
		counts.Asset += len(assets)
	}
	return sections, counts
}

// readText reads a file as best-effort UTF-8. Invalid byte sequences are
// dropped; any error becomes a marker string.
func (a *Aggregator) readText(file FileEntry) string {
	full := filepath.Join(a.root, filepath.FromSlash(file.RelPath()))

	if a.maxSize > 0 {
		info, err := os.Stat(full)
		if err != nil {
			return readErrorMarker(err)
		}
		if info.Size() > a.maxSize {
			return fmt.Sprintf("(Skipped: file exceeds %d bytes)", a.maxSize)
		}
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return readErrorMarker(err)
	}
	return strings.ToValidUTF8(string(content), "")
}

func readErrorMarker(err error) string {
	return fmt.Sprintf("(Error reading file: %v)", err)
}
