package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// Output formats accepted by --format.
const (
	formatHTML = "html"
	formatJSON = "json"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logFormat string
}

// contentFlags holds content source flags.
type contentFlags struct {
	baseURL    string
	about      bool
	locale     string
	extension  string
	timeout    string
	assetBase  string
	imageCheck bool
	excerpt    int
}

// diagramFlags holds diagram engine flags.
type diagramFlags struct {
	engine    string
	scriptURL string
	command   string
	timeout   string
}

// outputFlags holds output flags.
type outputFlags struct {
	path           string
	format         string
	standalone     bool
	style          string
	highlightStyle string
	assetPath      string
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common  commonFlags
	content contentFlags
	diagram diagramFlags
	output  outputFlags
	workers int
	watch   bool

	// changed records flags given explicitly, so false and zero values
	// still override the config file.
	changed map[string]bool
}

// set reports whether name was given on the command line.
func (f *renderFlags) set(name string) bool { return f.changed[name] }

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging and timings")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
}

// addContentFlags adds content source flags to a FlagSet.
func addContentFlags(fs *flag.FlagSet, f *contentFlags) {
	fs.StringVarP(&f.baseURL, "base-url", "b", "", "content base URL (http, https, or file)")
	fs.BoolVar(&f.about, "about", false, "fetch from the about-page base URL")
	fs.StringVarP(&f.locale, "locale", "l", "", "content locale for slugs (BCP 47)")
	fs.StringVar(&f.extension, "ext", "", "content extension for slugs: md, mdx")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "fetch timeout (e.g., 10s, 1m)")
	fs.StringVar(&f.assetBase, "asset-base", "", "base URL for relative images")
	fs.BoolVar(&f.imageCheck, "image-check", false, "probe images and replace broken ones")
	fs.IntVar(&f.excerpt, "excerpt-length", 0, "excerpt length in characters")
}

// addDiagramFlags adds diagram engine flags to a FlagSet.
func addDiagramFlags(fs *flag.FlagSet, f *diagramFlags) {
	fs.StringVar(&f.engine, "diagram-engine", "", "diagram engine: none, browser, command")
	fs.StringVar(&f.scriptURL, "diagram-script", "", "mermaid.js URL for the browser engine")
	fs.StringVar(&f.command, "diagram-command", "", "mermaid CLI for the command engine")
	fs.StringVar(&f.timeout, "diagram-timeout", "", "per-diagram render timeout")
}

// addOutputFlags adds output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.path, "output", "o", "", "output file or directory (default stdout)")
	fs.StringVarP(&f.format, "format", "f", formatHTML, "output format: html, json")
	fs.BoolVarP(&f.standalone, "standalone", "s", false, "wrap HTML in a complete page")
	fs.StringVar(&f.style, "style", "", "extra stylesheet for standalone pages")
	fs.StringVar(&f.highlightStyle, "highlight-style", "", "chroma style for standalone pages")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// newRenderFlagSet registers every render flag on a new FlagSet.
func newRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)

	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.watch, "watch", false, "re-render a file:// source on change")

	addCommonFlags(fs, &f.common)
	addContentFlags(fs, &f.content)
	addDiagramFlags(fs, &f.diagram)
	addOutputFlags(fs, &f.output)
	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{changed: map[string]bool{}}
	fs := newRenderFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printRenderUsage(stderr) }

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.changed[fl.Name] = true })

	switch f.output.format {
	case formatHTML, formatJSON:
	default:
		return nil, nil, fmt.Errorf("%w: --format %q (must be html or json)", ErrUsage, f.output.format)
	}
	if f.output.standalone && f.output.format != formatHTML {
		return nil, nil, fmt.Errorf("%w: --standalone requires --format html", ErrUsage)
	}
	return f, fs.Args(), nil
}

// parseFlagSet parses args, mapping --help to errHelpShown and every other
// parse failure to ErrUsage.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelpShown
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}
