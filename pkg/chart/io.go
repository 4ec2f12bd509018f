package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Chart Serialization API
// =============================================================================

// Marshal encodes m as indented JSON.
// Map keys are sorted by encoding/json, so equal models produce equal bytes.
func Marshal(m Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a model from JSON.
func Unmarshal(data []byte) (Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("decode chart: %w", err)
	}
	return m, nil
}

// Write encodes m as indented JSON to w.
func Write(m Model, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return nil
}

// WriteFile writes m to a JSON file.
func WriteFile(m Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(m, f)
}

// ReadFile reads a model from a JSON file.
func ReadFile(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Model{}, fmt.Errorf("open %s: %w", path, err)
	}
	return Unmarshal(data)
}
