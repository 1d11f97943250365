package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-mdblog/internal/config"
)

// Environment variable names.
const (
	envConfigPath    = "MDBLOG_CONFIG"
	envBaseURL       = "MDBLOG_BASE_URL"
	envAboutBaseURL  = "MDBLOG_ABOUT_BASE_URL"
	envLocale        = "MDBLOG_LOCALE"
	envExtension     = "MDBLOG_EXT"
	envTimeout       = "MDBLOG_TIMEOUT"
	envAssetBaseURL  = "MDBLOG_ASSET_BASE_URL"
	envImageCheck    = "MDBLOG_IMAGE_CHECK"
	envDiagramEngine = "MDBLOG_DIAGRAM_ENGINE"
	envDiagramScript = "MDBLOG_DIAGRAM_SCRIPT"
	envDiagramCmd    = "MDBLOG_DIAGRAM_COMMAND"
	envStyle         = "MDBLOG_STYLE"
	envLogLevel      = "MDBLOG_LOG_LEVEL"
	envLogFormat     = "MDBLOG_LOG_FORMAT"
	envWorkers       = "MDBLOG_WORKERS"
	envContainer     = "MDBLOG_CONTAINER"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Content source
	ConfigPath   string // MDBLOG_CONFIG: config file name or path
	BaseURL      string // MDBLOG_BASE_URL: posts base URL
	AboutBaseURL string // MDBLOG_ABOUT_BASE_URL: about pages base URL
	Locale       string // MDBLOG_LOCALE: content locale
	Extension    string // MDBLOG_EXT: md or mdx
	Timeout      string // MDBLOG_TIMEOUT: fetch timeout

	// Rendering
	AssetBaseURL  string // MDBLOG_ASSET_BASE_URL: base for relative images
	ImageCheck    *bool  // MDBLOG_IMAGE_CHECK: probe images
	DiagramEngine string // MDBLOG_DIAGRAM_ENGINE: none, browser, command
	DiagramScript string // MDBLOG_DIAGRAM_SCRIPT: mermaid.js URL
	DiagramCmd    string // MDBLOG_DIAGRAM_COMMAND: mermaid CLI
	Style         string // MDBLOG_STYLE: standalone page stylesheet

	// Process
	LogLevel  string // MDBLOG_LOG_LEVEL: debug, info, warn, error
	LogFormat string // MDBLOG_LOG_FORMAT: text, json
	Workers   int    // MDBLOG_WORKERS: parallel workers
}

// knownEnvVars lists valid MDBLOG_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	envConfigPath:    true,
	envBaseURL:       true,
	envAboutBaseURL:  true,
	envLocale:        true,
	envExtension:     true,
	envTimeout:       true,
	envAssetBaseURL:  true,
	envImageCheck:    true,
	envDiagramEngine: true,
	envDiagramScript: true,
	envDiagramCmd:    true,
	envStyle:         true,
	envLogLevel:      true,
	envLogFormat:     true,
	envWorkers:       true,
	envContainer:     true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed booleans and worker counts are ignored; durations are validated
// later with the rest of the config.
func loadEnvConfig(env *Environment) *envConfig {
	cfg := &envConfig{
		ConfigPath:    env.getenv(envConfigPath),
		BaseURL:       env.getenv(envBaseURL),
		AboutBaseURL:  env.getenv(envAboutBaseURL),
		Locale:        env.getenv(envLocale),
		Extension:     env.getenv(envExtension),
		Timeout:       env.getenv(envTimeout),
		AssetBaseURL:  env.getenv(envAssetBaseURL),
		DiagramEngine: env.getenv(envDiagramEngine),
		DiagramScript: env.getenv(envDiagramScript),
		DiagramCmd:    env.getenv(envDiagramCmd),
		Style:         env.getenv(envStyle),
		LogLevel:      env.getenv(envLogLevel),
		LogFormat:     env.getenv(envLogFormat),
	}

	if v := env.getenv(envImageCheck); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ImageCheck = &b
		}
	}

	if workers := env.getenv(envWorkers); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDBLOG_* variables.
// Helps catch typos like MDBLOG_BASEURL instead of MDBLOG_BASE_URL.
func warnUnknownEnvVars(w io.Writer, env *Environment) {
	for _, kv := range env.environ() {
		if !strings.HasPrefix(kv, "MDBLOG_") {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; flags are applied afterwards,
// giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	override(&cfg.Content.BaseURL, env.BaseURL)
	override(&cfg.Content.AboutBaseURL, env.AboutBaseURL)
	override(&cfg.Content.Locale, env.Locale)
	override(&cfg.Content.Extension, env.Extension)
	override(&cfg.Content.Timeout, env.Timeout)
	override(&cfg.Render.AssetBaseURL, env.AssetBaseURL)
	override(&cfg.Diagram.Engine, env.DiagramEngine)
	override(&cfg.Diagram.ScriptURL, env.DiagramScript)
	override(&cfg.Diagram.Command, env.DiagramCmd)
	override(&cfg.Assets.Style, env.Style)
	override(&cfg.Log.Level, env.LogLevel)
	override(&cfg.Log.Format, env.LogFormat)

	if env.ImageCheck != nil {
		cfg.Render.ImageCheck = *env.ImageCheck
	}
}
