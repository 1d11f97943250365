// Package pipeline implements the content stages between a fetched body and
// sanitized HTML.
//
// Stages, in order of use:
//   - Source preparation (line endings, leading metadata block)
//   - Compilation via Goldmark with the blog syntax extensions:
//     Obsidian image embeds, image-paragraph unwrapping, slug heading IDs,
//     heading anchors and Mermaid fence capture
//   - Rendering through a binding table of component renderers
//     (callouts, code blocks, images, tables, headings)
//   - Post-render passes over the markup: asset URL resolution, diagram
//     injection, failed image swaps and heading extraction
//
// The syntax stripper in strip.go is independent of the stages above. It
// reduces Markdown to plain text for excerpts and reading-time estimates.
//
// Sanitization and diagram rendering live in internal/sanitize and
// internal/diagram; the root mdblog package wires the stages together.
package pipeline
