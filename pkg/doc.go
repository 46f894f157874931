// Package pkg provides the core libraries for Inkpath notebook conversion.
//
// # Overview
//
// Inkpath reads reMarkable v6 .rm notebook files and converts them to open
// vector and text formats. The pkg directory is organized by pipeline stage:
//
//  1. [rm] - Binary block framing and the tagged value codec
//  2. [scene] - Typed block parsing and scene tree resolution
//  3. [render] - SVG, text, Markdown, JSON, and Graphviz export
//  4. [pipeline] - Parse and render orchestration with caching
//  5. [cache] - File, Redis, and MongoDB artifact caches
//  6. [errors], [io], [observability], [buildinfo] - Supporting infrastructure
//
// A notebook flows through the stages in order: rm.ReadBlocks produces the
// flat block list, scene.Build resolves it into a document tree, and the
// render functions walk that tree to produce artifacts. pipeline.Runner ties
// the stages together and caches rendered artifacts by content hash.
package pkg
