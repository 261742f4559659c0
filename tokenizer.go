package main

import (
	"fmt"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokenizer counts tokens in the finished document.
type Tokenizer interface {
	CountTokens(text string) int
	Close()
}

type TiktokenWrapper struct {
	ttk *tiktoken.Tiktoken
}

func (w *TiktokenWrapper) CountTokens(text string) int {
	if w.ttk == nil {
		return 0
	}
	return len(w.ttk.EncodeOrdinary(text))
}

func (w *TiktokenWrapper) Close() {}

type HFTokenizerWrapper struct {
	htk *hf.Tokenizer
}

func (w *HFTokenizerWrapper) CountTokens(text string) int {
	if w.htk == nil {
		return 0
	}
	en, err := w.htk.EncodeSingle(text)
	if err != nil {
		return 0
	}
	return len(en.Tokens)
}

func (w *HFTokenizerWrapper) Close() {}

const defaultTiktokenModel = "gpt-4o"
const defaultHFModel = "gpt2"

// TokenizerConfig selects a tokenizer implementation.
type TokenizerConfig struct {
	Type  string // "tiktoken" or "huggingface"
	Model string
	File  string // Local tokenizer.json, huggingface only
}

// getTokenizer returns a tokenizer instance for cfg.
func getTokenizer(cfg TokenizerConfig, log Logger) (Tokenizer, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "tiktoken":
		return loadTiktoken(cfg, log)
	case "huggingface":
		return loadHuggingFace(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported tokenizer type: %s. Use 'tiktoken' or 'huggingface'", cfg.Type)
	}
}

func loadTiktoken(cfg TokenizerConfig, log Logger) (Tokenizer, error) {
	model := cfg.Model
	if model == "" {
		model = defaultTiktokenModel
	}

	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		log.Warn("Tiktoken model '%s' not found, falling back to '%s': %v", model, defaultTiktokenModel, err)
		tke, err = tiktoken.EncodingForModel(defaultTiktokenModel)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding for default model '%s': %w", defaultTiktokenModel, err)
		}
	}
	return &TiktokenWrapper{ttk: tke}, nil
}

func loadHuggingFace(cfg TokenizerConfig, log Logger) (Tokenizer, error) {
	if cfg.File != "" {
		ttk, err := pretrained.FromFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer from file %s: %w", cfg.File, err)
		}
		return &HFTokenizerWrapper{htk: ttk}, nil
	}

	model := cfg.Model
	if model == "" {
		model = defaultHFModel
	}
	log.Info("Loading HuggingFace tokenizer for model: %s (this may download files)", model)

	configFilePath, err := hf.CachedPath(model, "tokenizer.json")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache path for model %s: %w", model, err)
	}
	ttk, err := pretrained.FromFile(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pretrained tokenizer for model %s (from %s): %w", model, configFilePath, err)
	}
	return &HFTokenizerWrapper{htk: ttk}, nil
}
