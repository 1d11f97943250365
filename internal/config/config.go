package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/alnah/go-mdblog/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxURLLength       = 2048 // Browser limit
	MaxLocaleLength    = 35   // BCP 47 tags in practice
	MaxExtensionLength = 10   // "md", "mdx"
	MaxNameLength      = 100  // Style, engine and command names
	MaxDurationLength  = 20   // "1m30s"
	MaxPathLength      = 4096 // PATH_MAX
)

// Diagram engine names accepted by diagram.engine.
const (
	EngineNone    = "none"
	EngineBrowser = "browser"
	EngineCommand = "command"
)

// Defaults applied by DefaultConfig.
const (
	DefaultLocale         = "ko"
	DefaultExtension      = "md"
	DefaultHighlightStyle = "monokai"
	DefaultExcerptLength  = 200
)

// Config holds all configuration for content rendering.
type Config struct {
	Content ContentConfig `yaml:"content"`
	Render  RenderConfig  `yaml:"render"`
	Diagram DiagramConfig `yaml:"diagram"`
	Excerpt ExcerptConfig `yaml:"excerpt"`
	Assets  AssetsConfig  `yaml:"assets"`
	Log     LogConfig     `yaml:"log"`
}

// ContentConfig defines where content is fetched from.
type ContentConfig struct {
	BaseURL      string `yaml:"baseURL"`      // Posts base (http(s):// or file://)
	AboutBaseURL string `yaml:"aboutBaseURL"` // About pages base (empty = baseURL)
	Locale       string `yaml:"locale"`       // BCP 47 tag used by ContentPath
	Extension    string `yaml:"extension"`    // "md" or "mdx"
	Timeout      string `yaml:"timeout"`      // Go duration; empty = no timeout
}

// RenderConfig defines rendering options.
type RenderConfig struct {
	AssetBaseURL   string `yaml:"assetBaseURL"`   // Empty = resolve against the content URL
	ImageCheck     bool   `yaml:"imageCheck"`     // Probe images and swap failures for placeholders
	HighlightStyle string `yaml:"highlightStyle"` // chroma style for standalone pages
}

// DiagramConfig defines the diagram engine.
type DiagramConfig struct {
	Engine    string `yaml:"engine"`    // "none", "browser", "command"
	ScriptURL string `yaml:"scriptURL"` // mermaid.js URL for the browser engine
	Command   string `yaml:"command"`   // mmdc binary for the command engine
	Timeout   string `yaml:"timeout"`   // Per-diagram render timeout
}

// ExcerptConfig defines summary extraction.
type ExcerptConfig struct {
	MaxLength int `yaml:"maxLength"` // Runes, default 200
}

// AssetsConfig defines standalone page asset loading.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
	Style    string `yaml:"style"`    // Extra stylesheet layered over the default
}

// LogConfig defines CLI logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text", "json"
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"content.baseURL", c.Content.BaseURL, MaxURLLength},
		{"content.aboutBaseURL", c.Content.AboutBaseURL, MaxURLLength},
		{"content.locale", c.Content.Locale, MaxLocaleLength},
		{"content.extension", c.Content.Extension, MaxExtensionLength},
		{"content.timeout", c.Content.Timeout, MaxDurationLength},
		{"render.assetBaseURL", c.Render.AssetBaseURL, MaxURLLength},
		{"render.highlightStyle", c.Render.HighlightStyle, MaxNameLength},
		{"diagram.engine", c.Diagram.Engine, MaxNameLength},
		{"diagram.scriptURL", c.Diagram.ScriptURL, MaxURLLength},
		{"diagram.command", c.Diagram.Command, MaxPathLength},
		{"diagram.timeout", c.Diagram.Timeout, MaxDurationLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"assets.style", c.Assets.Style, MaxNameLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	for field, value := range map[string]string{
		"content.baseURL":      c.Content.BaseURL,
		"content.aboutBaseURL": c.Content.AboutBaseURL,
		"render.assetBaseURL":  c.Render.AssetBaseURL,
	} {
		if err := validateBaseURL(field, value); err != nil {
			return err
		}
	}

	if c.Content.Locale != "" {
		if _, err := language.Parse(c.Content.Locale); err != nil {
			return fmt.Errorf("%w: content.locale: %q is not a BCP 47 tag", ErrInvalidValue, c.Content.Locale)
		}
	}

	switch strings.ToLower(c.Content.Extension) {
	case "", "md", "mdx":
	default:
		return fmt.Errorf("%w: content.extension: %q (must be md or mdx)", ErrInvalidValue, c.Content.Extension)
	}

	switch strings.ToLower(c.Diagram.Engine) {
	case "", EngineNone, EngineBrowser, EngineCommand:
	default:
		return fmt.Errorf("%w: diagram.engine: %q (must be none, browser, or command)", ErrInvalidValue, c.Diagram.Engine)
	}

	if _, err := parseDuration("content.timeout", c.Content.Timeout); err != nil {
		return err
	}
	if _, err := parseDuration("diagram.timeout", c.Diagram.Timeout); err != nil {
		return err
	}

	if c.Excerpt.MaxLength < 0 {
		return fmt.Errorf("%w: excerpt.maxLength: must not be negative, got %d", ErrInvalidValue, c.Excerpt.MaxLength)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level: %q", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format: %q (must be text or json)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// FetchTimeout returns content.timeout, zero when unset.
func (c *Config) FetchTimeout() time.Duration {
	d, _ := parseDuration("content.timeout", c.Content.Timeout)
	return d
}

// DiagramTimeout returns diagram.timeout, zero when unset.
func (c *Config) DiagramTimeout() time.Duration {
	d, _ := parseDuration("diagram.timeout", c.Diagram.Timeout)
	return d
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateBaseURL accepts empty values and absolute http(s) or file URLs.
func validateBaseURL(field, value string) error {
	if value == "" {
		return nil
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: %s: missing host in %q", ErrInvalidValue, field, value)
		}
	case "file":
	default:
		return fmt.Errorf("%w: %s: unsupported scheme in %q (must be http, https, or file)", ErrInvalidValue, field, value)
	}
	return nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s: must not be negative", ErrInvalidValue, field)
	}
	return d, nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{
			Locale:    DefaultLocale,
			Extension: DefaultExtension,
		},
		Render: RenderConfig{
			HighlightStyle: DefaultHighlightStyle,
		},
		Diagram: DiagramConfig{Engine: EngineNone},
		Excerpt: ExcerptConfig{MaxLength: DefaultExcerptLength},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, $XDG_CONFIG_HOME/mdblog/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "mdblog", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
