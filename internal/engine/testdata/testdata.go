// Package testdata embeds a small scaler, tree-ensemble model and labeled URL
// corpus used by tests across the engine.
package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed corpus.json
var corpusJSON []byte

// ScalerJSON is a 20-feature scaler artifact in the training column order.
//
//go:embed scaler.json
var ScalerJSON []byte

// ForestJSON is a three-tree ensemble fitted against ScalerJSON's schema.
//
//go:embed forest.json
var ForestJSON []byte

// CorpusEntry is a URL with the outcome expected from the embedded artifacts
// when the network probe succeeds (0.1s) or fails as given.
type CorpusEntry struct {
	URL         string  `json:"url"`
	ProbeOK     bool    `json:"probe_ok"`
	Phishing    bool    `json:"phishing"`
	Probability float64 `json:"probability"`
	Description string  `json:"description"`
}

// ProbeSeconds is the response time corpus entries assume for a successful probe.
const ProbeSeconds = 0.1

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}

// WriteArtifacts writes the embedded scaler and model into dir and returns
// their paths.
func WriteArtifacts(dir string) (scalerPath, modelPath string, err error) {
	scalerPath = filepath.Join(dir, "scaler.json")
	modelPath = filepath.Join(dir, "forest.json")
	if err := os.WriteFile(scalerPath, ScalerJSON, 0o644); err != nil {
		return "", "", fmt.Errorf("write scaler: %w", err)
	}
	if err := os.WriteFile(modelPath, ForestJSON, 0o644); err != nil {
		return "", "", fmt.Errorf("write model: %w", err)
	}
	return scalerPath, modelPath, nil
}
