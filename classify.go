package main

import (
	"path/filepath"
	"strings"
)

// Category is the outcome of classifying a file by extension.
type Category int

const (
	Ignored Category = iota
	Textual
	Asset
)

func (c Category) String() string {
	switch c {
	case Textual:
		return "textual"
	case Asset:
		return "asset"
	default:
		return "ignored"
	}
}

// Classification is a Category plus, for Textual files, the fence language tag.
type Classification struct {
	Category Category
	Language string
}

// Classifier maps extensions to classifications. It is immutable once built.
type Classifier struct {
	textual map[string]string
	assets  map[string]struct{}
}

// NewClassifier builds a classifier from the table. Extensions are
// normalized to lowercase with a leading dot.
func NewClassifier(table ExtensionTable) *Classifier {
	c := &Classifier{
		textual: normalizeTextual(table.Textual),
		assets:  make(map[string]struct{}, len(table.Assets)),
	}
	for _, ext := range normalizeAssets(table.Assets) {
		c.assets[ext] = struct{}{}
	}
	return c
}

// Classify returns the classification for a file name.
// An extension configured as both Textual and Asset is Textual.
func (c *Classifier) Classify(name string) Classification {
	ext := extensionOf(name)
	if ext == "" {
		return Classification{Category: Ignored}
	}
	if tag, ok := c.textual[ext]; ok {
		return Classification{Category: Textual, Language: tag}
	}
	if _, ok := c.assets[ext]; ok {
		return Classification{Category: Asset}
	}
	return Classification{Category: Ignored}
}

// extensionOf returns the lowercased extension of name including the dot.
// Leading dots do not start an extension, so ".gitignore" has none.
func extensionOf(name string) string {
	base := strings.TrimLeft(filepath.Base(name), ".")
	return strings.ToLower(filepath.Ext(base))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
