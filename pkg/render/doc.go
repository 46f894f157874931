// Package render turns a resolved scene document into export artifacts.
//
// # Overview
//
// This package contains the export passes that walk a [scene.Document] and
// produce output. It provides:
//
//   - SVG vector output with pressure and speed sensitive stroke widths
//   - Plain text and Markdown export of the typed text layer
//   - A JSON dump of resolved strokes for downstream tooling
//   - A raw block table for format debugging
//   - Graphviz scene tree diagrams (DOT, SVG, PNG)
//
// # Coordinates
//
// Device coordinates are screen units at 226 DPI with the x axis centered on
// the page. [RenderSVG] converts to points (72 per inch) and translates so
// the viewBox starts at the content bounding box, which never shrinks below
// the visible page. [WithFixedPage] forces the full page viewport instead.
//
// # Determinism
//
// All renderers are pure functions of the document: the same document yields
// byte-identical output. Floating point output is fixed to two decimals and
// stroke widths are quantized so that unordered map iteration can never leak
// into the artifact bytes.
package render
