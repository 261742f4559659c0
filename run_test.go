package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, root string, table ExtensionTable) (Summary, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out_summary.md")
	summary, err := Generate(GenerateOptions{
		Root:       root,
		OutputPath: out,
		Header:     ReportHeader{RepoName: "repo", SourceURL: "https://example.com/repo.git", Destination: "out_summary.md"},
		Table:      table,
	})
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	return summary, string(data)
}

func TestGenerate_JavaAssetsAndBuildDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/Main.java":   "class Main {}",
		"assets/icon.png": "\x89PNG",
		"build/tmp.class": "cafebabe",
	})

	summary, doc := generate(t, root, DefaultExtensionTable())

	want := renderHeader(ReportHeader{RepoName: "repo", SourceURL: "https://example.com/repo.git", Destination: "out_summary.md"}) +
		"### 📦 Assets in: assets\n```text\nicon.png\n```\n\n---\n\n" +
		"## 📄 File: src/Main.java\n```java\nclass Main {}\n```\n\n"
	assert.Equal(t, want, doc)
	assert.Equal(t, Counters{Textual: 1, Asset: 1}, summary.Counters)
	assert.NotContains(t, doc, "build")
	assert.NotContains(t, doc, "tmp.class")
	// Root, assets and src; build is never entered.
	assert.Equal(t, 3, summary.Directories)
}

func TestGenerate_EmptyTree(t *testing.T) {
	summary, doc := generate(t, t.TempDir(), DefaultExtensionTable())

	assert.Equal(t, renderHeader(ReportHeader{RepoName: "repo", SourceURL: "https://example.com/repo.git", Destination: "out_summary.md"}), doc)
	assert.Equal(t, Counters{}, summary.Counters)
	assert.Equal(t, 1, summary.Directories)
}

func TestGenerate_UnknownExtensionHasNoEffect(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"logs/server.log": "boom"})

	summary, doc := generate(t, root, DefaultExtensionTable())

	assert.NotContains(t, doc, "server.log")
	assert.NotContains(t, doc, "## ")
	assert.Equal(t, Counters{}, summary.Counters)
}

func TestGenerate_OneSectionPerTextualFileAndListingPerDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":                "# top",
		"gradle.properties":        "a=b",
		"src/main/A.java":          "class A {}",
		"src/main/B.java":          "class B {}",
		"src/main/res/b.png":       "",
		"src/main/res/a.png":       "",
		"src/main/res/sound.ogg":   "",
		"src/main/res/lang.json":   "{}",
		"src/main/.idea/x.xml":     "<x/>",
		"deep/a/b/c/build/x.java":  "class X {}",
		"deep/a/b/c/keep/y.java":   "class Y {}",
		"deep/a/b/c/keep/logo.ico": "",
	})

	summary, doc := generate(t, root, DefaultExtensionTable())

	for _, path := range []string{"README.md", "gradle.properties", "src/main/A.java", "src/main/B.java", "src/main/res/lang.json", "deep/a/b/c/keep/y.java"} {
		assert.Equal(t, 1, strings.Count(doc, "## 📄 File: "+path+"\n"), path)
	}
	assert.Equal(t, 6, strings.Count(doc, "## 📄 File: "))
	assert.Equal(t, 2, strings.Count(doc, "### 📦 Assets in: "))
	assert.Contains(t, doc, "### 📦 Assets in: src/main/res\n```text\na.png\nb.png\nsound.ogg\n```\n")
	assert.NotContains(t, doc, "x.xml")
	assert.NotContains(t, doc, "class X {}")
	assert.Equal(t, Counters{Textual: 6, Asset: 4}, summary.Counters)

	// Within a directory, content sections come before the listing.
	assert.Less(t, strings.Index(doc, "src/main/res/lang.json"), strings.Index(doc, "### 📦 Assets in: src/main/res"))
}

func TestGenerate_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/One.java": "class One {}",
		"b/x.png":    "",
		"c/d.toml":   "k = 1",
	})

	first, doc1 := generate(t, root, DefaultExtensionTable())
	second, doc2 := generate(t, root, DefaultExtensionTable())

	assert.Equal(t, doc1, doc2)
	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, first.Counters, second.Counters)
}

func TestGenerate_OutputInsideRootIsNotEmbedded(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":     "# demo",
		"src/Main.java": "class Main {}",
	})
	out := filepath.Join(root, "demo_default_summary.md")
	opts := GenerateOptions{
		Root:       root,
		OutputPath: out,
		Header:     ReportHeader{RepoName: "demo", SourceURL: root, Destination: "demo_default_summary.md"},
		Table:      DefaultExtensionTable(),
	}

	first, err := Generate(opts)
	require.NoError(t, err)
	doc1, err := os.ReadFile(out)
	require.NoError(t, err)

	second, err := Generate(opts)
	require.NoError(t, err)
	doc2, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, string(doc1), string(doc2))
	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, Counters{Textual: 2}, second.Counters)
	assert.NotContains(t, string(doc2), "## 📄 File: demo_default_summary.md")
}

func TestGenerate_OnSectionSeesEverySection(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a", "b.png": ""})
	collector := &sectionCollector{}

	_, err := Generate(GenerateOptions{
		Root:       root,
		OutputPath: filepath.Join(t.TempDir(), "out.md"),
		Table:      DefaultExtensionTable(),
		OnSection:  collector.Add,
	})

	require.NoError(t, err)
	require.Len(t, collector.sections, 2)
	assert.Equal(t, ContentSection, collector.sections[0].Kind)
	assert.Equal(t, AssetListing, collector.sections[1].Kind)
}

func TestGenerate_RespectGitIgnore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":  "secret.txt\n",
		"secret.txt":  "hunter2",
		"visible.txt": "hello",
	})
	out := filepath.Join(t.TempDir(), "out.md")

	summary, err := Generate(GenerateOptions{Root: root, OutputPath: out, Table: DefaultExtensionTable(), RespectGitIgnore: true})

	require.NoError(t, err)
	assert.Equal(t, Counters{Textual: 1}, summary.Counters)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
}

func TestGenerate_DestinationError(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})
	out := filepath.Join(t.TempDir(), "missing-dir", "out.md")

	_, err := Generate(GenerateOptions{Root: root, OutputPath: out, Table: DefaultExtensionTable()})

	var destErr *DestinationError
	require.ErrorAs(t, err, &destErr)
	assert.Equal(t, out, destErr.Path)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_NoTempFileLeftBehind(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})
	outDir := t.TempDir()

	_, err := Generate(GenerateOptions{Root: root, OutputPath: filepath.Join(outDir, "out.md"), Table: DefaultExtensionTable()})
	require.NoError(t, err)

	dirEntries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, dirEntries, 1)
	assert.Equal(t, "out.md", dirEntries[0].Name())
}

type fakeAcquirer struct {
	root string
	err  error
}

func (f fakeAcquirer) Acquire(context.Context, string, string) (string, error) {
	return f.root, f.err
}

func TestRunner_Run(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/Main.java": "class Main {}"})
	out := filepath.Join(t.TempDir(), "Create_dev_summary.md")

	r := &runner{acquirer: fakeAcquirer{root: root}, log: nopLogger{}}
	summary, err := r.Run(context.Background(), RunConfig{
		Source: "https://github.com/Creators-of-Create/Create",
		Branch: "mc1.21.1/dev",
		Output: out,
		Table:  DefaultExtensionTable(),
	})

	require.NoError(t, err)
	assert.Equal(t, stateDone, r.state)
	assert.Equal(t, out, summary.Output)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Repository Summary: Create\n- URL: https://github.com/Creators-of-Create/Create\n- Branch: mc1.21.1/dev\n- Created: Create_dev_summary.md\n"))
}

func TestRunner_AcquisitionFailureWritesNothing(t *testing.T) {
	wd := t.TempDir()
	acqErr := &AcquisitionError{Source: "https://example.com/none.git", Err: errors.New("unreachable")}
	out := filepath.Join(wd, "none_default_summary.md")

	r := &runner{acquirer: fakeAcquirer{err: acqErr}, log: nopLogger{}}
	_, err := r.Run(context.Background(), RunConfig{Source: "https://example.com/none.git", Output: out, Table: DefaultExtensionTable()})

	var got *AcquisitionError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, stateFailed, r.state)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunState_String(t *testing.T) {
	assert.Equal(t, "idle", stateIdle.String())
	assert.Equal(t, "acquiring", stateAcquiring.String())
	assert.Equal(t, "walking", stateWalking.String())
	assert.Equal(t, "done", stateDone.String())
	assert.Equal(t, "failed", stateFailed.String())
}
