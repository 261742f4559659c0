package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"gopkg.in/yaml.v3"
)

// ExtensionTable is the configurable classification table.
// Textual maps an extension (".java") to the language tag used on its fenced block.
type ExtensionTable struct {
	Textual    map[string]string `yaml:"textual"`
	Assets     []string          `yaml:"assets"`
	IgnoreDirs []string          `yaml:"ignore_dirs"`
}

// DefaultExtensionTable returns the built-in table.
func DefaultExtensionTable() ExtensionTable {
	return ExtensionTable{
		Textual: map[string]string{
			".java":       "java",
			".json":       "json",
			".toml":       "toml",
			".gradle":     "groovy",
			".xml":        "",
			".mcmeta":     "",
			".properties": "",
			".md":         "",
			".txt":        "",
		},
		Assets: []string{
			".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tga",
			".ogg", ".mp3", ".wav",
			".jar", ".zip", ".nbt", ".class", ".ico",
		},
		IgnoreDirs: []string{
			".git", ".idea", ".vscode", "build", "run", "bin", "out", ".gradle", "eclipse",
		},
	}
}

// loadExtensionTable reads a YAML table from path. Sections missing from the
// file keep their built-in defaults.
func loadExtensionTable(path string) (ExtensionTable, error) {
	table := DefaultExtensionTable()
	if path == "" {
		return table, nil
	}

	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("error reading extension table %s: %w", path, err)
	}

	var parsed ExtensionTable
	if err := yaml.Unmarshal(yamlFile, &parsed); err != nil {
		return table, fmt.Errorf("error parsing extension table %s: %w", path, err)
	}

	if parsed.Textual != nil {
		table.Textual = normalizeTextual(parsed.Textual)
	}
	if parsed.Assets != nil {
		table.Assets = normalizeAssets(parsed.Assets)
	}
	if parsed.IgnoreDirs != nil {
		table.IgnoreDirs = parsed.IgnoreDirs
	}
	return table, nil
}

// findExtensionTable looks for extensions.yml in the standard config locations.
// It returns "" when none exists.
func findExtensionTable() string {
	configPaths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		configPaths = append(configPaths, filepath.Join(home, ".config", "repodigest"))
	}
	configPaths = append(configPaths, ".")

	for _, p := range configPaths {
		testPath := filepath.Join(p, "extensions.yml")
		if _, err := os.Stat(testPath); err == nil {
			return testPath
		}
	}
	return ""
}

// Merge applies command-line additions on top of the table.
// Textual entries use the form ".ext" or ".ext=tag"; the dot is optional.
// Keys are normalized first, so an addition always replaces the table's
// entry for the same extension.
func (t ExtensionTable) Merge(textual, assets, ignoreDirs []string) ExtensionTable {
	merged := ExtensionTable{
		Textual:    normalizeTextual(t.Textual),
		Assets:     normalizeAssets(append(append([]string{}, t.Assets...), assets...)),
		IgnoreDirs: append(append([]string{}, t.IgnoreDirs...), ignoreDirs...),
	}
	for _, entry := range textual {
		ext, tag, _ := strings.Cut(entry, "=")
		if ext = normalizeExt(ext); ext == "" {
			continue
		}
		merged.Textual[ext] = strings.TrimSpace(tag)
	}
	return merged
}

// normalizeTextual rewrites keys to their lowercase dotted form. When several
// spellings collide (".MD", "md", ".md"), the canonical spelling wins;
// otherwise the lexically last spelling does.
func normalizeTextual(textual map[string]string) map[string]string {
	keys := make([]string, 0, len(textual))
	for ext := range textual {
		keys = append(keys, ext)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := keys[i] == normalizeExt(keys[i]), keys[j] == normalizeExt(keys[j])
		if ci != cj {
			return !ci
		}
		return keys[i] < keys[j]
	})

	out := make(map[string]string, len(textual))
	for _, ext := range keys {
		if norm := normalizeExt(ext); norm != "" {
			out[norm] = textual[ext]
		}
	}
	return out
}

func normalizeAssets(assets []string) []string {
	out := make([]string, 0, len(assets))
	for _, ext := range assets {
		if norm := normalizeExt(ext); norm != "" {
			out = append(out, norm)
		}
	}
	return out
}

// DetectLanguages fills empty tags using chroma's lexer registry.
// Extensions chroma does not know keep the empty tag.
func (t ExtensionTable) DetectLanguages() ExtensionTable {
	exts := make([]string, 0, len(t.Textual))
	for ext := range t.Textual {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	detected := make(map[string]string, len(t.Textual))
	for _, ext := range exts {
		tag := t.Textual[ext]
		if tag == "" {
			tag = lexerTag(ext)
		}
		detected[ext] = tag
	}
	t.Textual = detected
	return t
}

// lexerTag returns the first alias of the chroma lexer matching "file<ext>".
func lexerTag(ext string) string {
	lexer := lexers.Match("file" + normalizeExt(ext))
	if lexer == nil {
		return ""
	}
	cfg := lexer.Config()
	if len(cfg.Aliases) > 0 {
		return cfg.Aliases[0]
	}
	return strings.ToLower(cfg.Name)
}
