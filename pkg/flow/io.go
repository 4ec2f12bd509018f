package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// Parse decodes and validates a graph payload.
// The payload is checked against the graph schema, decoded, and then
// validated with [Validate]. Any failure rejects the whole graph.
func Parse(data []byte) (Graph, error) {
	v, err := DefaultSchemaValidator()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "load graph schema")
	}
	if err := v.Validate(data); err != nil {
		return nil, err
	}

	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrInvalidPayload, "decode: %v", err)
	}
	if err := Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

// ReadGraph reads and validates a graph payload from r.
func ReadGraph(r io.Reader) (Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	return Parse(data)
}

// ReadGraphFile reads and validates a graph payload from a JSON file.
func ReadGraphFile(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "graph file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return Parse(data)
}

// MarshalGraph encodes g as canonical JSON.
// Map keys are sorted by encoding/json, so equal graphs always produce equal
// bytes; the pipeline hashes this output for cache keys.
func MarshalGraph(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes g to a JSON file.
func WriteGraphFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
