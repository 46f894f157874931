package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/inkpath/inkpath/pkg/cache"
	"github.com/inkpath/inkpath/pkg/errors"
	"github.com/inkpath/inkpath/pkg/observability"
	"github.com/inkpath/inkpath/pkg/render"
	"github.com/inkpath/inkpath/pkg/rm"
	"github.com/inkpath/inkpath/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
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

// Execute runs the complete parse → render pipeline with caching. When every
// requested artifact is already cached, the input is not parsed at all.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		ContentHash: cache.Hash(opts.Input),
		Artifacts:   make(map[string][]byte),
		CacheInfo:   CacheInfo{ArtifactHits: make(map[string]bool)},
	}

	// store the source under its hash so later runs can convert by hash
	_ = r.Cache.Set(ctx, r.Keyer.DocumentKey(result.ContentHash), opts.Input, cache.DocumentTTL)
	observability.Cache().OnCacheSet(ctx, "document", len(opts.Input))

	if !opts.Refresh {
		allHit := true
		for _, format := range opts.Formats {
			key := r.artifactKey(result.ContentHash, format, opts)
			data, hit, err := r.Cache.Get(ctx, key)
			if err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				result.Artifacts[format] = data
				result.CacheInfo.ArtifactHits[format] = true
			} else {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				allHit = false
			}
		}
		if allHit {
			result.CacheInfo.AllHit = true
			r.Logger.Debug("all artifacts cached", "hash", result.ContentHash, "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 1: Parse
	parseStart := time.Now()
	observability.Pipeline().OnParseStart(ctx, len(opts.Input))
	doc, err := r.Parse(opts.Input, opts.Logger)
	observability.Pipeline().OnParseComplete(ctx, blockCountOf(doc), time.Since(parseStart), err)
	if err != nil {
		return nil, err
	}
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.BlockCount = len(doc.Blocks)
	doc.Walk(func(_ *scene.Group, item scene.Item) {
		if _, ok := item.(*scene.Stroke); ok {
			result.Stats.StrokeCount++
		}
	})
	r.Logger.Info("parsed document",
		"blocks", result.Stats.BlockCount,
		"strokes", result.Stats.StrokeCount,
		"duration", result.Stats.ParseTime)

	// Stage 2: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	for _, format := range opts.Formats {
		if result.CacheInfo.ArtifactHits[format] && !opts.Refresh {
			continue
		}
		data, err := r.renderFormat(doc, format, opts)
		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
			return nil, errors.Wrap(code, err, "render %s", format)
		}
		result.Artifacts[format] = data
		_ = r.Cache.Set(ctx, r.artifactKey(result.ContentHash, format, opts), data, cache.ArtifactTTL)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, nil)
	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

func blockCountOf(doc *scene.Document) int {
	if doc == nil {
		return 0
	}
	return len(doc.Blocks)
}

// Parse decodes and resolves a document. It is pure and uncached.
func (r *Runner) Parse(input []byte, logger *log.Logger) (*scene.Document, error) {
	if logger == nil {
		logger = r.Logger
	}
	blocks, err := rm.ReadBlocks(input)
	if err != nil {
		return nil, err
	}
	return scene.Build(blocks, logger)
}

// Lookup retrieves previously seen source bytes by content hash.
func (r *Runner) Lookup(ctx context.Context, contentHash string) ([]byte, bool, error) {
	return r.Cache.Get(ctx, r.Keyer.DocumentKey(contentHash))
}

func (r *Runner) renderFormat(doc *scene.Document, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		var svgOpts []render.SVGOption
		if opts.ExcludeText {
			svgOpts = append(svgOpts, render.WithoutText())
		}
		if opts.FixedPage {
			svgOpts = append(svgOpts, render.WithFixedPage())
		}
		return render.RenderSVG(doc, svgOpts...), nil
	case FormatText:
		return render.RenderText(doc), nil
	case FormatMarkdown:
		return render.RenderMarkdown(doc), nil
	case FormatJSON:
		return render.RenderJSON(doc)
	case FormatBlocks:
		return render.RenderBlocks(doc.Blocks)
	case FormatDOT:
		return []byte(render.ToDOT(doc)), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown format %q", format)
	}
}

func (r *Runner) artifactKey(contentHash, format string, opts Options) string {
	return r.Keyer.ArtifactKey(contentHash, cache.ArtifactKeyOpts{
		Format:      format,
		IncludeText: !opts.ExcludeText,
		FixedPage:   opts.FixedPage,
	})
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
