// Package pipeline provides the core conversion pipeline.
//
// This package implements the parse → render flow shared by the CLI and the
// HTTP API, so both entry points behave identically and caching logic lives
// in one place.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Parse: decode the block stream and resolve the document model
//  2. Render: generate output artifacts in the requested formats
//
// Parsing is pure and fast, so only artifacts are cached; the source bytes
// are additionally stored under their content hash so a previously seen
// document can be re-converted by hash alone.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   data,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/inkpath/inkpath/pkg/errors"
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatText     = "txt"
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatBlocks   = "blocks"
	FormatDOT      = "dot"
	FormatRM       = "rm"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatText:     true,
	FormatMarkdown: true,
	FormatJSON:     true,
	FormatBlocks:   true,
	FormatDOT:      true,
}

// Options contains all configuration for one conversion.
// The struct supports JSON serialization for API requests.
type Options struct {
	// Formats selects the artifacts to produce. Defaults to SVG.
	Formats []string `json:"formats,omitempty"`

	// ExcludeText drops typed text from visual outputs.
	ExcludeText bool `json:"exclude_text,omitempty"`

	// FixedPage sizes visual outputs to the device screen instead of the
	// content bounding box.
	FixedPage bool `json:"fixed_page,omitempty"`

	// Refresh bypasses cached artifacts and re-renders.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Input  []byte      `json:"-"`
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ContentHash is the hash of the source bytes, usable as a stable
	// document identifier.
	ContentHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	BlockCount  int
	StrokeCount int
	ParseTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for a run.
type CacheInfo struct {
	// ArtifactHits records per-format whether the artifact came from cache.
	ArtifactHits map[string]bool

	// AllHit is true when every requested artifact came from cache and the
	// parse stage was skipped entirely.
	AllHit bool
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format %q (must be one of: svg, txt, md, json, blocks, dot)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Input) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no input data")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}
