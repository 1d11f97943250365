// Package mdblog renders Markdown/MDX blog content to sanitized HTML.
//
// # Quick Start
//
// Create a renderer, render a post, and close when done:
//
//	r, err := mdblog.New(mdblog.WithBaseURL("https://raw.example.com/blog/posts"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	doc, err := r.Render(ctx, mdblog.Input{Path: r.PostPath("hello-world")})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(doc.Frontmatter.Title, doc.HTML)
//
// # Pipeline
//
// Rendering follows these stages, strictly in order:
//
//  1. Fetch {baseURL}/{path}; the path is percent-decoded and hyphens in its
//     last segment become spaces
//  2. Split the leading YAML frontmatter block from the body
//  3. Compile the body with Goldmark: Obsidian image embeds, image paragraph
//     unwrapping, GFM, mermaid fence capture, slug heading ids and anchors
//  4. Render through the component binding table (callouts, code blocks,
//     lazy images, tables, headings)
//  5. Sanitize the document with an allowlist policy
//  6. Render diagrams through the configured engine, sanitize each SVG and
//     inject it; with no engine, emit <pre class="mermaid"> for hydration
//  7. Optionally probe images and swap failures for a placeholder
//
// Fetch, frontmatter and compile failures abort the document and wrap
// ErrFetch, ErrNetwork, ErrParse or ErrCompile. A diagram the engine rejects
// only shows an inline error with its source; an image that fails to load
// only shows its placeholder.
//
// # Content Instances
//
// Content tracks one mounted view. A new Load supersedes any load in flight;
// late results are dropped instead of overwriting newer state:
//
//	c := r.NewContent(func(s mdblog.Status) { log.Println("content", s) })
//	defer c.Close()
//	doc, err := c.Load(ctx, "ko/hello-world.md", "")
//	if err != nil {
//	    doc, err = c.Retry(ctx) // full pipeline, fetch included
//	}
//
// # Diagrams
//
// Mermaid fences render server-side when an engine is configured:
//
//	engine, err := mdblog.NewDiagramEngine(mdblog.EngineBrowser, mdblog.DiagramEngineOptions{})
//	r, err := mdblog.New(mdblog.WithEngine(engine))
//
// EngineBrowser runs mermaid.js in headless Chrome; EngineCommand runs the
// mermaid CLI (mmdc). Every engine result goes through the SVG sanitizer.
//
// # Parallel Processing
//
// For batch rendering, use RendererPool so each worker owns its engine:
//
//	pool := mdblog.NewRendererPool(mdblog.ResolvePoolSize(0), factory)
//	defer pool.Close()
//
//	r, err := pool.Acquire()
//	defer pool.Release(r)
//
// # Text Utilities
//
// StripMarkdown, Excerpt and ReadingTime work on raw source text and never
// touch the compiler.
package mdblog
