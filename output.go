package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/xxh3"
)

// ReportHeader identifies the source at the top of the document.
type ReportHeader struct {
	RepoName    string
	SourceURL   string
	Branch      string
	Destination string
}

// ReportWriter streams the header and sections to an output.
// Every section byte is also fed to an xxh3 digest so two runs over the
// same tree can be compared without diffing the documents.
type ReportWriter struct {
	w      *bufio.Writer
	digest *xxh3.Hasher
}

// NewReportWriter writes the header and separator to w.
func NewReportWriter(w io.Writer, header ReportHeader) (*ReportWriter, error) {
	rw := &ReportWriter{w: bufio.NewWriter(w), digest: xxh3.New()}
	if _, err := rw.w.WriteString(renderHeader(header)); err != nil {
		return nil, err
	}
	return rw, nil
}

// WriteSection renders one section.
func (rw *ReportWriter) WriteSection(section OutputSection) error {
	text := renderSection(section)
	_, _ = rw.digest.Write([]byte(text))
	_, err := rw.w.WriteString(text)
	return err
}

// Flush writes any buffered data to the underlying output.
func (rw *ReportWriter) Flush() error {
	return rw.w.Flush()
}

// Digest returns the xxh3 hash of every section written so far.
func (rw *ReportWriter) Digest() uint64 {
	return rw.digest.Sum64()
}

func renderHeader(h ReportHeader) string {
	branch := h.Branch
	if branch == "" {
		branch = "(default)"
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("# Repository Summary: %s\n", h.RepoName))
	builder.WriteString(fmt.Sprintf("- URL: %s\n", h.SourceURL))
	builder.WriteString(fmt.Sprintf("- Branch: %s\n", branch))
	builder.WriteString(fmt.Sprintf("- Created: %s\n\n", h.Destination))
	builder.WriteString("---\n\n")
	return builder.String()
}

func renderSection(s OutputSection) string {
	var builder strings.Builder
	switch s.Kind {
	case ContentSection:
		builder.WriteString(fmt.Sprintf("## 📄 File: %s\n", s.Heading))
		builder.WriteString(fmt.Sprintf("```%s\n", s.Language))
		builder.WriteString(s.Body)
		builder.WriteString("\n```\n\n")
	case AssetListing:
		builder.WriteString(fmt.Sprintf("### 📦 Assets in: %s\n", s.Heading))
		builder.WriteString("```text\n")
		for _, name := range s.Assets {
			builder.WriteString(name)
			builder.WriteString("\n")
		}
		builder.WriteString("```\n\n")
		builder.WriteString("---\n\n")
	}
	return builder.String()
}
