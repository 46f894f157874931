package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	inkio "github.com/inkpath/inkpath/pkg/io"
	"github.com/inkpath/inkpath/pkg/render"
	"github.com/inkpath/inkpath/pkg/rm"
	"github.com/inkpath/inkpath/pkg/scene"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	interactive bool   // browse blocks in a TUI
	graph       string // scene graph output: dot, svg, png
	output      string // graph output path
}

// inspectCommand creates the inspect command for examining notebook
// structure. By default it prints a summary and the block table; with
// --graph it renders the scene tree through Graphviz instead.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Examine the block structure of a notebook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse blocks interactively")
	cmd.Flags().StringVarP(&opts.graph, "format", "f", "", "render the scene tree instead: dot, svg, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "graph output file")

	return cmd
}

func runInspect(ctx context.Context, input string, opts *inspectOpts) error {
	logger := loggerFromContext(ctx)

	data, err := inkio.ReadNotebook(input)
	if err != nil {
		return err
	}
	blocks, err := rm.ReadBlocks(data)
	if err != nil {
		return err
	}

	if opts.interactive {
		model := NewBlockListModel(blocks)
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	}

	doc, err := scene.Build(blocks, logger)
	if err != nil {
		return err
	}

	if opts.graph != "" {
		return writeGraph(ctx, doc, input, opts)
	}

	printSummary(doc, blocks, len(data))
	printNewline()
	for _, blk := range blocks {
		printDetail("%4d  %-24s  min=%d cur=%d  %d bytes",
			blk.Offset, blk.Type, blk.MinVersion, blk.CurrentVersion, blk.Length())
	}
	return nil
}

func printSummary(doc *scene.Document, blocks []rm.Block, size int) {
	printKeyValue("File size", fmt.Sprintf("%d bytes", size))
	printKeyValue("Blocks", fmt.Sprintf("%d", len(blocks)))

	strokes := 0
	doc.Walk(func(_ *scene.Group, item scene.Item) {
		if _, ok := item.(*scene.Stroke); ok {
			strokes++
		}
	})
	printKeyValue("Strokes", fmt.Sprintf("%d", strokes))
	printKeyValue("Layers", fmt.Sprintf("%d", len(doc.Root.Children)))
	if doc.RootText != nil {
		printKeyValue("Text", doc.RootText.String())
	}
	if doc.Orphans != nil {
		printKeyValue("Orphans", fmt.Sprintf("%d", len(doc.Orphans.Children)))
	}
}

// writeGraph renders the scene tree in the requested graph format.
func writeGraph(ctx context.Context, doc *scene.Document, input string, opts *inspectOpts) error {
	var data []byte
	var err error
	switch opts.graph {
	case "dot":
		data = []byte(render.ToDOT(doc))
	case "svg":
		data, err = render.RenderGraphSVG(ctx, doc)
	case "png":
		data, err = render.RenderGraphPNG(ctx, doc)
	default:
		return fmt.Errorf("unknown graph format: %s (must be 'dot', 'svg', or 'png')", opts.graph)
	}
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		path = inkio.OutputPath(input, opts.graph)
	}
	if err := inkio.WriteArtifact(path, data); err != nil {
		return err
	}
	printFile(path)
	return nil
}
