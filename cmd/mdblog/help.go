package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdblog <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Fetch and render posts to HTML")
	fmt.Fprintln(w, "  strip      Print plain text, excerpt, or reading time")
	fmt.Fprintln(w, "  doctor     Check diagram engines and content reachability")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdblog help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdblog render <path|slug>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fetch posts from the content base URL and render them to sanitized HTML.")
	fmt.Fprintln(w, "A slug without extension resolves to <locale>/<slug>.<ext>.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Content:")
	fmt.Fprintln(w, "  -b, --base-url <url>      Content base URL (http, https, or file)")
	fmt.Fprintln(w, "      --about               Use the about-page base URL")
	fmt.Fprintln(w, "  -l, --locale <tag>        Locale for slugs (BCP 47)")
	fmt.Fprintln(w, "      --ext <s>             Extension for slugs: md, mdx")
	fmt.Fprintln(w, "  -t, --timeout <d>         Fetch timeout (e.g., 10s, 1m)")
	fmt.Fprintln(w, "      --asset-base <url>    Base URL for relative images")
	fmt.Fprintln(w, "      --image-check         Probe images and replace broken ones")
	fmt.Fprintln(w, "      --excerpt-length <n>  Excerpt length in characters")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Diagrams:")
	fmt.Fprintln(w, "      --diagram-engine <s>  Engine: none, browser, command")
	fmt.Fprintln(w, "      --diagram-script <u>  mermaid.js URL for the browser engine")
	fmt.Fprintln(w, "      --diagram-command <s> Mermaid CLI for the command engine")
	fmt.Fprintln(w, "      --diagram-timeout <d> Per-diagram render timeout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (default stdout)")
	fmt.Fprintln(w, "  -f, --format <s>          Format: html, json")
	fmt.Fprintln(w, "  -s, --standalone          Wrap HTML in a complete page")
	fmt.Fprintln(w, "      --style <name>        Extra stylesheet for standalone pages")
	fmt.Fprintln(w, "      --highlight-style <s> Chroma style for standalone pages")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Process:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --watch               Re-render a file:// post when it changes")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging and timings")
	fmt.Fprintln(w, "      --log-format <s>      Log format: text, json")
}

// printStripUsage prints usage for the strip command.
func printStripUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdblog strip [file|-] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Reduce Markdown/MDX to plain text. Reads stdin without a file or with -.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --excerpt <n>         Print an excerpt of at most n characters")
	fmt.Fprintln(w, "      --reading-time        Print the reading time in minutes")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdblog doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check diagram engines, content reachability, and the environment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -b, --base-url <url>      Content base URL to probe")
	fmt.Fprintln(w, "      --json                Machine-readable output")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "strip":
		printStripUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdblog version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdblog help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
