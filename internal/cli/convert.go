package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	inkio "github.com/inkpath/inkpath/pkg/io"
	"github.com/inkpath/inkpath/pkg/pipeline"
	"github.com/inkpath/inkpath/pkg/scene"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output    string   // output file path (single format) or base path (multiple)
	formats   []string // output formats: svg, txt, md, json, blocks, dot, rm
	noText    bool     // drop typed text from SVG output
	fixedPage bool     // force the full page viewport
	refresh   bool     // re-render even when a cached artifact exists
	noCache   bool     // disable the artifact cache entirely
}

// convertCommand creates the convert command for rendering notebooks.
//
// The special format "rm" reverses direction: the input is treated as
// plain UTF-8 text and written out as a minimal notebook file.
func (c *CLI) convertCommand() *cobra.Command {
	var formatsStr string
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a notebook to SVG, text, Markdown, JSON, or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatsStr == "" && opts.output != "" {
				formatsStr = strings.TrimPrefix(filepath.Ext(opts.output), ".")
			}
			opts.formats = parseFormats(formatsStr)
			if len(opts.formats) == 1 && opts.formats[0] == pipeline.FormatRM {
				return runImport(cmd.Context(), args[0], &opts)
			}
			for _, f := range opts.formats {
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}
			return c.runConvert(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), txt, md, json, blocks, dot, rm (comma-separated; inferred from --output extension when omitted)")
	cmd.Flags().BoolVar(&opts.noText, "no-text", false, "exclude typed text from SVG output")
	cmd.Flags().BoolVar(&opts.fixedPage, "fixed-page", false, "use the full page viewport instead of the content bounding box")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts and re-render")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// runConvert reads the notebook, runs the pipeline for all requested
// formats, and writes one artifact file per format.
func (c *CLI) runConvert(ctx context.Context, input string, opts *convertOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	data, err := inkio.ReadNotebook(input)
	if err != nil {
		return err
	}
	logger.Debugf("Read %s: %d bytes", input, len(data))

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Converting %s", filepath.Base(input)))
	spin.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Input:       data,
		Formats:     opts.formats,
		ExcludeText: opts.noText,
		FixedPage:   opts.fixedPage,
		Refresh:     opts.refresh,
		Logger:      logger,
	})
	if err != nil {
		spin.StopWithError(fmt.Sprintf("Conversion failed: %s", err))
		return err
	}
	spin.Stop()

	for _, format := range opts.formats {
		path := outputPath(opts.output, input, format, len(opts.formats) > 1)
		if err := inkio.WriteArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}

	printStats(result.Stats.BlockCount, result.Stats.StrokeCount, result.CacheInfo.AllHit)
	prog.done(fmt.Sprintf("Converted %s", filepath.Base(input)))
	return nil
}

// runImport builds a minimal notebook from a plain text file.
func runImport(ctx context.Context, input string, opts *convertOpts) error {
	logger := loggerFromContext(ctx)

	data, err := inkio.ReadNotebook(input)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := scene.WriteSimpleText(&buf, strings.TrimRight(string(data), "\n")); err != nil {
		return err
	}

	path := outputPath(opts.output, input, pipeline.FormatRM, false)
	if err := inkio.WriteArtifact(path, buf.Bytes()); err != nil {
		return err
	}
	printFile(path)
	logger.Infof("Wrote notebook %s", path)
	return nil
}

// outputPath derives the artifact path from the --output flag and the
// input path. With multiple formats the flag is treated as a base path
// and each artifact gets its format as extension.
func outputPath(output, input, format string, multi bool) string {
	if output == "" {
		return inkio.OutputPath(input, format)
	}
	if multi {
		return inkio.OutputPath(output, format)
	}
	return output
}
