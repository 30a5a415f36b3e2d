// Package config provides configuration management for patterns using Viper
// for flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration covers the HTTP server, fragment discovery, README
// rendering, the theme list, navigation labels, the split-pane layout and
// development conveniences like hot reload. Values are validated for path
// traversal and dangerous characters before use.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/conneroisu/patterns/internal/validation"
	"github.com/spf13/viper"
)

// DefaultVariant is the variant name omitted from pattern URLs.
const DefaultVariant = "base"

// NoDocumentation is the placeholder shown when a README cannot be loaded.
const NoDocumentation = "no documentation available"

type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Components  ComponentsConfig  `mapstructure:"components" yaml:"components"`
	Docs        DocsConfig        `mapstructure:"docs" yaml:"docs"`
	Themes      []ThemeConfig     `mapstructure:"themes" yaml:"themes"`
	Navigation  NavigationConfig  `mapstructure:"navigation" yaml:"navigation"`
	Layout      LayoutConfig      `mapstructure:"layout" yaml:"layout"`
	Development DevelopmentConfig `mapstructure:"development" yaml:"development"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	Host           string   `mapstructure:"host" yaml:"host"`
	Open           bool     `mapstructure:"open" yaml:"open"`
	NoOpen         bool     `mapstructure:"no-open" yaml:"no-open"`
	BasePath       string   `mapstructure:"base_path" yaml:"base_path"`
	PublicDir      string   `mapstructure:"public_dir" yaml:"public_dir"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type ComponentsConfig struct {
	Root           string   `mapstructure:"root" yaml:"root"`
	Glob           string   `mapstructure:"glob" yaml:"glob"`
	ReadmeGlob     string   `mapstructure:"readme_glob" yaml:"readme_glob"`
	DefaultVariant string   `mapstructure:"default_variant" yaml:"default_variant"`
	Exclude        []string `mapstructure:"exclude" yaml:"exclude"`
}

type DocsConfig struct {
	Engine        string `mapstructure:"engine" yaml:"engine"`
	RootReadme    string `mapstructure:"root_readme" yaml:"root_readme"`
	RepositoryURL string `mapstructure:"repository_url" yaml:"repository_url"`
	Placeholder   string `mapstructure:"placeholder" yaml:"placeholder"`
}

// ThemeConfig describes one entry of the theme selector. Source is a file
// path or an http(s) URL; the empty Value is the unstyled default.
type ThemeConfig struct {
	Value  string `mapstructure:"value" yaml:"value"`
	Name   string `mapstructure:"name" yaml:"name"`
	Source string `mapstructure:"source" yaml:"source"`
}

type NavigationConfig struct {
	TitleCase bool `mapstructure:"title_case" yaml:"title_case"`
}

type LayoutConfig struct {
	MinPaneHeight  int `mapstructure:"min_pane_height" yaml:"min_pane_height"`
	SplitterHeight int `mapstructure:"splitter_height" yaml:"splitter_height"`
}

type DevelopmentConfig struct {
	HotReload         bool `mapstructure:"hot_reload" yaml:"hot_reload"`
	StatePreservation bool `mapstructure:"state_preservation" yaml:"state_preservation"`
}

// DefaultThemes mirrors the stylesheet list of the original pattern library.
func DefaultThemes() []ThemeConfig {
	return []ThemeConfig{
		{Value: "", Name: "Browser Default"},
		{Value: "simpledotcss", Name: "Simple.css", Source: "https://cdn.jsdelivr.net/npm/simpledotcss/simple.css"},
		{Value: "almondcss", Name: "Almond.css", Source: "https://cdn.jsdelivr.net/npm/almond.css/dist/almond.css"},
		{Value: "tuftecss", Name: "Tufte CSS", Source: "https://cdn.jsdelivr.net/npm/tufte-css/tufte.css"},
		{Value: "marxcss", Name: "Marx.css", Source: "https://cdn.jsdelivr.net/npm/marx-css/css/marx.css"},
		{Value: "mvpcss", Name: "MVP.css", Source: "https://cdn.jsdelivr.net/npm/mvp.css/mvp.css"},
		{Value: "picocss", Name: "Pico.css", Source: "https://cdn.jsdelivr.net/npm/@picocss/pico/css/pico.css"},
	}
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	// Override open if explicitly disabled via flag
	if viper.IsSet("server.no-open") && viper.GetBool("server.no-open") {
		config.Server.Open = false
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns a validated configuration built only from defaults.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	config.Development.HotReload = true
	config.Development.StatePreservation = true
	return config
}

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 && !viper.IsSet("server.port") {
		config.Server.Port = 8080
	}
	config.Server.BasePath = NormalizeBasePath(config.Server.BasePath)
	if config.Server.PublicDir == "" {
		config.Server.PublicDir = "./public"
	}

	if config.Components.Root == "" {
		config.Components.Root = "./src"
	}
	if config.Components.Glob == "" {
		config.Components.Glob = "components/**/*/index.html"
	}
	if config.Components.ReadmeGlob == "" {
		config.Components.ReadmeGlob = "components/**/README.md"
	}
	if config.Components.DefaultVariant == "" {
		config.Components.DefaultVariant = DefaultVariant
	}
	if len(config.Components.Exclude) == 0 {
		config.Components.Exclude = []string{"**/node_modules/**", "**/.git/**"}
	}

	if config.Docs.Engine == "" {
		config.Docs.Engine = "light"
	}
	if config.Docs.RootReadme == "" {
		config.Docs.RootReadme = "./README.md"
	}
	if config.Docs.Placeholder == "" {
		config.Docs.Placeholder = NoDocumentation
	}
	config.Docs.RepositoryURL = strings.TrimSuffix(config.Docs.RepositoryURL, "/")

	if len(config.Themes) == 0 {
		config.Themes = DefaultThemes()
	}

	if config.Layout.MinPaneHeight <= 0 {
		config.Layout.MinPaneHeight = 160
	}
	if config.Layout.SplitterHeight <= 0 {
		config.Layout.SplitterHeight = 8
	}

	if !viper.IsSet("development.hot_reload") {
		config.Development.HotReload = true
	}
	if !viper.IsSet("development.state_preservation") {
		config.Development.StatePreservation = true
	}
}

// NormalizeBasePath returns the base path with exactly one leading and one
// trailing slash, so "/" stays "/" and "patterns" becomes "/patterns/".
func NormalizeBasePath(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return "/"
	}
	return "/" + base + "/"
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateComponentsConfig(&config.Components); err != nil {
		return fmt.Errorf("components config: %w", err)
	}

	if err := validateDocsConfig(&config.Docs); err != nil {
		return fmt.Errorf("docs config: %w", err)
	}

	if err := validateThemes(config.Themes); err != nil {
		return fmt.Errorf("themes config: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	if strings.ContainsAny(config.BasePath, "?#\"'<> ") {
		return fmt.Errorf("base_path contains invalid characters: %s", config.BasePath)
	}

	if err := validatePath(config.PublicDir); err != nil {
		return fmt.Errorf("invalid public_dir '%s': %w", config.PublicDir, err)
	}

	return nil
}

// validateComponentsConfig validates discovery settings
func validateComponentsConfig(config *ComponentsConfig) error {
	if err := validatePath(config.Root); err != nil {
		return fmt.Errorf("invalid root '%s': %w", config.Root, err)
	}

	for _, glob := range []string{config.Glob, config.ReadmeGlob} {
		if !doublestar.ValidatePattern(glob) {
			return fmt.Errorf("invalid glob pattern: %s", glob)
		}
		if strings.Contains(glob, "..") || strings.HasPrefix(glob, "/") {
			return fmt.Errorf("glob must stay inside the root: %s", glob)
		}
	}

	for _, exclude := range config.Exclude {
		if !doublestar.ValidatePattern(exclude) {
			return fmt.Errorf("invalid exclude glob pattern: %s", exclude)
		}
	}

	if strings.ContainsAny(config.DefaultVariant, ":/") {
		return fmt.Errorf("default_variant must not contain ':' or '/': %s", config.DefaultVariant)
	}

	return nil
}

func validateDocsConfig(config *DocsConfig) error {
	switch config.Engine {
	case "light", "goldmark":
	default:
		return fmt.Errorf("unknown engine %q (light, goldmark)", config.Engine)
	}

	if err := validatePath(config.RootReadme); err != nil {
		return fmt.Errorf("invalid root_readme '%s': %w", config.RootReadme, err)
	}

	if config.RepositoryURL != "" &&
		!strings.HasPrefix(config.RepositoryURL, "https://") &&
		!strings.HasPrefix(config.RepositoryURL, "http://") {
		return fmt.Errorf("repository_url must be an http(s) URL: %s", config.RepositoryURL)
	}

	return nil
}

func validateThemes(themes []ThemeConfig) error {
	seen := make(map[string]bool, len(themes))
	for _, theme := range themes {
		if seen[theme.Value] {
			return fmt.Errorf("duplicate theme value %q", theme.Value)
		}
		seen[theme.Value] = true

		if theme.Name == "" {
			return fmt.Errorf("theme %q has no name", theme.Value)
		}
		if theme.Value != "" && theme.Source == "" {
			return fmt.Errorf("theme %q has no source", theme.Value)
		}
		switch {
		case theme.Source == "":
		case strings.HasPrefix(theme.Source, "http://"), strings.HasPrefix(theme.Source, "https://"):
			if err := validation.ValidateStylesheetURL(theme.Source); err != nil {
				return fmt.Errorf("theme %q: %w", theme.Value, err)
			}
		default:
			if err := validatePath(theme.Source); err != nil {
				return fmt.Errorf("theme %q: %w", theme.Value, err)
			}
		}
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
