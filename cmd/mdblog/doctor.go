package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdblog/internal/config"
	"github.com/alnah/go-mdblog/internal/diagram"
	"github.com/alnah/go-mdblog/internal/fetch"
	"github.com/alnah/go-mdblog/internal/fileutil"
)

// doctorProbeTimeout bounds the content reachability probe.
const doctorProbeTimeout = 5 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Engine   string      `json:"engine"`
	Browser  browserInfo `json:"browser"`
	Command  commandInfo `json:"command"`
	Content  contentInfo `json:"content"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// browserInfo holds Chrome/Chromium detection results.
type browserInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// commandInfo holds mermaid CLI detection results.
type commandInfo struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

// contentInfo holds content source reachability.
type contentInfo struct {
	BaseURL   string `json:"base_url,omitempty"`
	Reachable bool   `json:"reachable"`
	Detail    string `json:"detail,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printDoctorUsage(env.Stderr) }

	jsonOutput := fs.Bool("json", false, "machine-readable output")
	configName := fs.StringP("config", "c", "", "config file name or path")
	baseURL := fs.StringP("base-url", "b", "", "content base URL to probe")

	if err := parseFlagSet(fs, args); err != nil {
		if errors.Is(err, errHelpShown) {
			return ExitSuccess
		}
		return ExitUsage
	}

	envCfg := loadEnvConfig(env)
	cfg, err := loadConfig(*configName, envCfg.ConfigPath)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, "", env))
		return exitCodeFor(err)
	}
	applyEnvConfig(envCfg, cfg)
	if fs.Changed("base-url") {
		cfg.Content.BaseURL = *baseURL
	}

	result := runDoctor(ctx, cfg, env)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, env *Environment) *doctorResult {
	engine := strings.ToLower(cfg.Diagram.Engine)
	if engine == "" {
		engine = config.EngineNone
	}

	result := &doctorResult{
		Status: "ready",
		Engine: engine,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.getenv("ROD_BROWSER_BIN"),
		},
	}

	checkBrowser(result)
	checkCommand(result, cfg.Diagram.Command)
	checkContent(ctx, result, cfg.Content.BaseURL)
	checkEnvironment(result, env)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkBrowser detects Chrome/Chromium. A missing browser is an error only
// when the browser engine is selected.
func checkBrowser(result *doctorResult) {
	path, found := diagram.BrowserPath()
	if !found {
		if result.Engine == config.EngineBrowser {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
		}
		return
	}

	result.Browser.Found = true
	result.Browser.Path = path
	result.Browser.Sandbox = result.Env.NoSandbox != "1"

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- detected browser path
	if err == nil {
		result.Browser.Version = strings.TrimSpace(string(out))
	} else if result.Engine == config.EngineBrowser {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get browser version: %v", err))
	}
}

// checkCommand detects the mermaid CLI. A missing CLI is an error only when
// the command engine is selected.
func checkCommand(result *doctorResult, command string) {
	engine := diagram.NewCommandEngine(diagram.WithCommand(command))
	result.Command.Name = engine.Command()

	path, found := engine.Available()
	if !found {
		if result.Engine == config.EngineCommand {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s not found. Install @mermaid-js/mermaid-cli or set diagram.command", engine.Command()))
		}
		return
	}
	result.Command.Found = true
	result.Command.Path = path
}

// checkContent probes the content base URL. Any HTTP answer, even an error
// status, proves the source is reachable.
func checkContent(ctx context.Context, result *doctorResult, baseURL string) {
	result.Content.BaseURL = baseURL
	if baseURL == "" {
		result.Warnings = append(result.Warnings,
			"No content base URL configured. Set content.baseURL, MDBLOG_BASE_URL, or --base-url")
		return
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid content base URL: %v", err))
		return
	}

	if u.Scheme == "file" {
		info, err := os.Stat(filepath.FromSlash(u.Path))
		switch {
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("Content directory not found: %s", u.Path))
		case !info.IsDir():
			result.Errors = append(result.Errors, fmt.Sprintf("Content base is not a directory: %s", u.Path))
		default:
			result.Content.Reachable = true
			result.Content.Detail = "directory"
		}
		return
	}

	ctx, cancel := context.WithTimeout(ctx, doctorProbeTimeout)
	defer cancel()

	err = fetch.New(baseURL).Probe(ctx, baseURL)
	var statusErr *fetch.StatusError
	switch {
	case err == nil:
		result.Content.Reachable = true
		result.Content.Detail = "ok"
	case errors.As(err, &statusErr):
		result.Content.Reachable = true
		result.Content.Detail = fmt.Sprintf("HTTP %d", statusErr.StatusCode)
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("Content source unreachable: %v", err))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	// Detect container (multi-signal approach)
	result.Env.Container, result.Env.ContainerHint = isContainer(env)

	result.Env.CI = inCI(env)

	// Chrome's sandbox fails in most containers
	if result.Engine == config.EngineBrowser &&
		(result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// inCI reports whether a common CI provider variable is set.
func inCI(env *Environment) bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.getenv(v) != "" {
			return true
		}
	}
	return false
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(env *Environment) (bool, string) {
	// Explicit override (highest priority)
	if env.getenv(envContainer) == "1" {
		return true, envContainer + "=1"
	}
	// Docker
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := env.getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if env.getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used by the command engine.
func checkSystem(result *doctorResult) {
	f, err := os.CreateTemp("", "mdblog-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdblog doctor")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Diagram engine: %s\n", r.Engine)
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Browser: %s\n", r.Browser.Path)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
		if r.Browser.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintf(w, "  [%s] Browser: not found\n", severity(r.Engine == config.EngineBrowser))
	}
	if r.Command.Found {
		fmt.Fprintf(w, "  [OK] %s: %s\n", r.Command.Name, r.Command.Path)
	} else {
		fmt.Fprintf(w, "  [%s] %s: not found\n", severity(r.Engine == config.EngineCommand), r.Command.Name)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Content")
	switch {
	case r.Content.BaseURL == "":
		fmt.Fprintln(w, "  [WARN] Base URL: not configured")
	case r.Content.Reachable:
		fmt.Fprintf(w, "  [OK] %s (%s)\n", r.Content.BaseURL, r.Content.Detail)
	default:
		fmt.Fprintf(w, "  [ERROR] %s: unreachable\n", r.Content.BaseURL)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// severity labels a missing dependency: an error when it is in use, a
// skipped check otherwise.
func severity(inUse bool) string {
	if inUse {
		return "ERROR"
	}
	return "SKIP"
}
