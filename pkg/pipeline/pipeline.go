// Package pipeline provides the core stepgraph pipeline.
//
// This package implements the complete parse → reconstruct → layout → render
// pipeline used by the CLI and the HTTP server, so both entry points share
// the same defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: Decode the graph payload and validate it (schema, then names)
//  2. Reconstruct: Turn the flat step graph into the nested step tree
//  3. Layout: Measure and place the tree as a chart model
//  4. Render: Generate output in various formats (SVG, JSON, DOT, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    VizType: pipeline.VizTypeChart,
//	    Formats: []string{"svg", "json"},
//	}
//	result, err := runner.Execute(ctx, payload, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	g, err := runner.Parse(ctx, payload)
//	t, err := runner.Reconstruct(ctx, g)
//	m, err := runner.ComputeChart(ctx, t, graphHash, opts)
//	artifacts, err := runner.Render(ctx, m, t, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stepgraph/pkg/cache"
	"github.com/matzehuels/stepgraph/pkg/chart"
	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
	"github.com/matzehuels/stepgraph/pkg/flow"
	"github.com/matzehuels/stepgraph/pkg/layout"
	"github.com/matzehuels/stepgraph/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// Visualization types.
const (
	// VizTypeChart draws the chart model at its computed positions.
	VizTypeChart = "chart"

	// VizTypeNodelink lays the step tree out with Graphviz.
	VizTypeNodelink = "nodelink"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeChart

// DefaultScale is the PNG scale factor used when none is given.
const DefaultScale = 2.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeChart:    true,
	VizTypeNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options. Zero values select the layout defaults.
	BaseWidth  float64 `json:"base_width,omitempty"`
	BaseHeight float64 `json:"base_height,omitempty"`
	MarginX    float64 `json:"margin_x,omitempty"`
	MarginY    float64 `json:"margin_y,omitempty"`

	// Render options
	VizType  string   `json:"viz_type,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Show step type and doc in node-link labels
	Tooltips bool     `json:"tooltips,omitempty"` // Emit step docs as SVG <title> elements
	Ports    bool     `json:"ports,omitempty"`    // Draw port markers in chart SVGs
	Scale    float64  `json:"scale,omitempty"`    // PNG scale factor

	// Refresh skips cache reads; fresh results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the parsed step graph.
	Graph flow.Graph

	// GraphHash is the content hash of the canonical graph JSON.
	GraphHash string

	// Tree is the reconstructed step tree.
	Tree tree.Tree

	// Chart is the positioned chart model.
	Chart chart.Model

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	StepCount       int
	LinkCount       int
	NodeCount       int // chart nodes, containers included
	TreeDepth       int
	ParseTime       time.Duration
	ReconstructTime time.Duration
	LayoutTime      time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ChartHit  bool // Whether the chart model came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, json, dot, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return apperrors.New(apperrors.ErrCodeInvalidVizType,
			"invalid viz_type: %q (must be one of: chart, nodelink)", vizType)
	}
	return nil
}

// ValidateFormatForVizType checks that vizType can produce format.
// DOT output describes the Graphviz graph and only exists for node-link views.
func ValidateFormatForVizType(vizType, format string) error {
	if format == FormatDOT && vizType != VizTypeNodelink {
		return apperrors.New(apperrors.ErrCodeUnsupported,
			"format %q requires viz_type %q", FormatDOT, VizTypeNodelink)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults for the full pipeline and checks
// the render options. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	cfg := o.LayoutConfig()
	o.BaseWidth = cfg.BaseWidth
	o.BaseHeight = cfg.BaseHeight
	o.MarginX = cfg.MarginX
	o.MarginY = cfg.MarginY
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	if o.BaseWidth < 0 || o.BaseHeight < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "box size must not be negative")
	}
	if o.MarginX < 0 || o.MarginY < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "margins must not be negative")
	}
	o.SetLayoutDefaults()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	for _, f := range o.Formats {
		if err := ValidateFormatForVizType(o.VizType, f); err != nil {
			return err
		}
	}
	return nil
}

// IsNodelink returns true if this is a node-link visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// LayoutConfig returns the layout configuration. Zero fields take the layout
// defaults.
func (o *Options) LayoutConfig() layout.Config {
	cfg := layout.DefaultConfig()
	if o.BaseWidth > 0 {
		cfg.BaseWidth = o.BaseWidth
	}
	if o.BaseHeight > 0 {
		cfg.BaseHeight = o.BaseHeight
	}
	if o.MarginX > 0 {
		cfg.MarginX = o.MarginX
	}
	if o.MarginY > 0 {
		cfg.MarginY = o.MarginY
	}
	return cfg
}

// ChartKeyOpts returns cache key options for chart computation.
func (o *Options) ChartKeyOpts() cache.ChartKeyOpts {
	cfg := o.LayoutConfig()
	return cache.ChartKeyOpts{
		BaseWidth:  cfg.BaseWidth,
		BaseHeight: cfg.BaseHeight,
		MarginX:    cfg.MarginX,
		MarginY:    cfg.MarginY,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Options that do not affect the given format are left out of the key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{VizType: o.VizType, Format: format}
	if format == FormatJSON {
		// The chart JSON is the same for every viz type.
		k.VizType = ""
		return k
	}
	if o.IsNodelink() {
		k.Detailed = o.Detailed
	} else {
		k.Tooltips = o.Tooltips
		k.Ports = o.Ports
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
