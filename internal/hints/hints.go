// Package hints turns common failures into one-line suggestions. Each hint
// is formatted as "\n  hint: <text>" so callers can append it to an error.
package hints

import "strings"

// BrowserEnv describes the process environment as far as launching a
// headless browser is concerned.
type BrowserEnv struct {
	CI          bool
	Container   bool
	NoSandbox   bool   // ROD_NO_SANDBOX=1
	BrowserPath string // ROD_BROWSER_BIN
}

// ForBrowserConnect suggests sandbox and binary overrides for a browser
// that failed to start.
func ForBrowserConnect(e BrowserEnv) string {
	var parts []string
	if (e.CI || e.Container) && !e.NoSandbox {
		parts = append(parts, "set ROD_NO_SANDBOX=1 inside containers and CI")
	}
	if e.BrowserPath == "" {
		parts = append(parts, "point ROD_BROWSER_BIN at a Chrome binary")
	}
	if len(parts) == 0 {
		return ""
	}
	parts = append(parts, "or render diagrams with --diagram-engine command")
	return format(strings.Join(parts, "; "))
}

func ForTimeout() string {
	return format("slow content host, raise --timeout or content.timeout")
}

// ForConfigNotFound suggests --config, or creating the first searched path
// under ~/.config/mdblog.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(p, ".config/mdblog") {
			return format(hint + " or create " + p)
		}
	}
	return format(hint)
}

func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound lists the built-in style names.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForContentNotFound explains the content path layout. locale, when set,
// is named so a wrong --locale is easy to spot.
func ForContentNotFound(locale string) string {
	hint := "content paths are <baseURL>/<locale>/<slug>.<ext>"
	if locale != "" {
		hint += "; current locale is " + locale + ", change it with --locale"
	}
	return format(hint)
}

func ForDiagramCommand(command string) string {
	return format(command + " not found, install with npm i -g @mermaid-js/mermaid-cli or set --diagram-command")
}

func ForFrontmatter() string {
	return format("frontmatter needs a title and a path between leading --- lines")
}

func ForComponent() string {
	return format("only Markdown and lowercase HTML tags are rendered; remove or escape the component tag")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
