package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache stores opaque byte payloads under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored data and true on a hit, or false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any connection held by the cache.
	Close() error
}

// TTLs for cached pipeline outputs. Charts and artifacts are pure functions
// of their inputs, so entries only expire to bound cache size.
const (
	ChartTTL    = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Keyer derives cache keys for pipeline outputs.
type Keyer interface {
	// ChartKey returns the key for the chart model of a graph.
	ChartKey(graphHash string, opts ChartKeyOpts) string

	// ArtifactKey returns the key for a rendered artifact of a chart.
	ArtifactKey(chartHash string, opts ArtifactKeyOpts) string
}

// ChartKeyOpts holds every layout option that changes the chart model.
type ChartKeyOpts struct {
	BaseWidth  float64 `json:"base_width"`
	BaseHeight float64 `json:"base_height"`
	MarginX    float64 `json:"margin_x"`
	MarginY    float64 `json:"margin_y"`
}

// ArtifactKeyOpts holds every render option that changes the artifact bytes.
type ArtifactKeyOpts struct {
	VizType  string  `json:"viz_type"`
	Format   string  `json:"format"`
	Detailed bool    `json:"detailed,omitempty"`
	Tooltips bool    `json:"tooltips,omitempty"`
	Ports    bool    `json:"ports,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

// DefaultKeyer builds keys of the form "kind:sha256(parts)".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ChartKey returns "chart:<hash>" over the graph hash and layout options.
func (DefaultKeyer) ChartKey(graphHash string, opts ChartKeyOpts) string {
	return kindKey("chart", graphHash, opts)
}

// ArtifactKey returns "artifact:<hash>" over the chart hash and render options.
func (DefaultKeyer) ArtifactKey(chartHash string, opts ArtifactKeyOpts) string {
	return kindKey("artifact", chartHash, opts)
}

// kindKey hashes the JSON array of parts. Option structs encode with fixed
// field order, so equal options always give equal keys.
func kindKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data. Graph payloads are hashed over their
// canonical JSON so that formatting never splits a cache entry.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache misses every Get and drops every Set. It backs --no-cache and the
// "none" backend, so the pipeline always recomputes.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error { return nil }
func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
