package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stepgraph/pkg/cache"
	"github.com/matzehuels/stepgraph/pkg/chart"
	"github.com/matzehuels/stepgraph/pkg/flow"
	"github.com/matzehuels/stepgraph/pkg/observability"
	"github.com/matzehuels/stepgraph/pkg/tree"
)

// Cache key types reported to observability hooks.
const (
	keyTypeChart    = "chart"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → reconstruct → layout → render pipeline
// on a raw graph payload.
func (r *Runner) Execute(ctx context.Context, payload []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	parseStart := time.Now()
	g, err := r.Parse(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	parseTime := time.Since(parseStart)

	result, err := r.ExecuteGraph(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.ParseTime = parseTime
	return result, nil
}

// ExecuteGraph runs the pipeline on an already decoded graph. The graph is
// validated during reconstruction.
func (r *Runner) ExecuteGraph(ctx context.Context, g flow.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Graph:     g,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.StepCount = len(g)
	result.Stats.LinkCount = g.LinkCount()

	graphHash, err := HashGraph(g)
	if err != nil {
		return nil, err
	}
	result.GraphHash = graphHash

	// Stage 1: Reconstruct
	reconstructStart := time.Now()
	t, err := r.Reconstruct(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("reconstruct: %w", err)
	}
	result.Tree = t
	result.Stats.ReconstructTime = time.Since(reconstructStart)
	result.Stats.TreeDepth = tree.Depth(t)

	opts.Logger.Debug("reconstructed tree",
		"steps", result.Stats.StepCount,
		"containers", tree.Containers(t),
		"depth", result.Stats.TreeDepth,
		"duration", result.Stats.ReconstructTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	m, chartHit, err := r.ComputeChartWithCacheInfo(ctx, t, graphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Chart = m
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(m.Nodes)
	result.CacheInfo.ChartHit = chartHit

	opts.Logger.Info("computed chart",
		"nodes", len(m.Nodes),
		"links", len(m.Links),
		"width", m.Width,
		"height", m.Height,
		"cached", chartHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, m, t, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"viz", opts.VizType,
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse decodes and validates a graph payload.
func (r *Runner) Parse(ctx context.Context, payload []byte) (flow.Graph, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, len(payload))
	start := time.Now()

	g, err := flow.Parse(payload)
	hooks.OnParseComplete(ctx, len(g), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Reconstruct converts g into its step tree.
func (r *Runner) Reconstruct(ctx context.Context, g flow.Graph) (tree.Tree, error) {
	start := time.Now()
	t, err := tree.Reconstruct(g)
	observability.Pipeline().OnReconstructComplete(ctx, len(tree.StepNames(t)), tree.Depth(t), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ComputeChartWithCacheInfo lays out t with caching and returns cache hit
// info. graphHash identifies the graph t was reconstructed from.
func (r *Runner) ComputeChartWithCacheInfo(ctx context.Context, t tree.Tree, graphHash string, opts Options) (chart.Model, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return chart.Model{}, false, err
	}
	cacheKey := r.Keyer.ChartKey(graphHash, opts.ChartKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := chart.Unmarshal(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeChart)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeChart)

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(tree.StepNames(t)))
	start := time.Now()
	m := ComputeChart(t, opts)
	hooks.OnLayoutComplete(ctx, m.Width, m.Height, time.Since(start), nil)

	if data, err := chart.Marshal(m); err == nil {
		r.store(ctx, keyTypeChart, cacheKey, data, cache.ChartTTL)
	}

	return m, false, nil
}

// ComputeChart is a convenience wrapper that calls ComputeChartWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeChart(ctx context.Context, t tree.Tree, graphHash string, opts Options) (chart.Model, error) {
	m, _, err := r.ComputeChartWithCacheInfo(ctx, t, graphHash, opts)
	return m, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m chart.Model, t tree.Tree, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from chart data
	chartData, err := chart.Marshal(m)
	if err != nil {
		return nil, false, fmt.Errorf("serialize chart for cache key: %w", err)
	}
	chartHash := cache.Hash(chartData)

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		allCached := true
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(chartHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				allCached = false
				break
			}
			artifacts[format] = data
		}
		if allCached {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			return artifacts, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.VizType, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, m, t, opts)
	hooks.OnRenderComplete(ctx, opts.VizType, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(chartHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, keyTypeArtifact, cacheKey, data, cache.ArtifactTTL)
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, m chart.Model, t tree.Tree, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, m, t, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes a cache entry. Cache failures never fail the pipeline.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
