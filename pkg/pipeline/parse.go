package pipeline

import (
	"fmt"

	"github.com/matzehuels/stepgraph/pkg/cache"
	"github.com/matzehuels/stepgraph/pkg/flow"
)

// Parse decodes and validates a graph payload and returns it with its
// content hash.
func Parse(data []byte) (flow.Graph, string, error) {
	g, err := flow.Parse(data)
	if err != nil {
		return nil, "", err
	}
	hash, err := HashGraph(g)
	if err != nil {
		return nil, "", err
	}
	return g, hash, nil
}

// HashGraph returns the content hash of g.
//
// The hash is taken over the canonical JSON encoding, so payloads that differ
// only in whitespace, key order or explicit nulls hash the same.
func HashGraph(g flow.Graph) (string, error) {
	data, err := flow.MarshalGraph(g)
	if err != nil {
		return "", fmt.Errorf("serialize graph for cache key: %w", err)
	}
	return cache.Hash(data), nil
}
