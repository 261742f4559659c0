package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "summary.pdf")
	sections := []OutputSection{
		{Kind: ContentSection, Heading: "src/Main.java", Language: "java", Body: "class Main {\n\tint x = 1;\n}"},
		{Kind: ContentSection, Heading: "notes.txt", Body: "plain text"},
		{Kind: AssetListing, Heading: "assets", Assets: []string{"a.png", "b.png"}},
	}
	summary := Summary{Counters: Counters{Textual: 2, Asset: 2}}

	err := generatePDF(ReportHeader{RepoName: "repo", SourceURL: "u"}, sections, summary, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestGeneratePDF_BadDestination(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "summary.pdf")
	err := generatePDF(ReportHeader{}, nil, Summary{}, out)
	assert.Error(t, err)
}

func TestGetTokenizer_UnsupportedType(t *testing.T) {
	_, err := getTokenizer(TokenizerConfig{Type: "sentencepiece"}, nopLogger{})
	assert.ErrorContains(t, err, "unsupported tokenizer type")
}
