package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/conneroisu/patterns/internal/config"
	"github.com/conneroisu/patterns/internal/errors"
	"github.com/conneroisu/patterns/internal/logging"
	"github.com/conneroisu/patterns/internal/registry"
	"github.com/conneroisu/patterns/internal/scanner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigFile = ".patterns.yml"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "patterns",
	Short: "A documentation shell for HTML pattern libraries",
	Long: `Patterns serves a browsable documentation shell for a directory of static
HTML demo fragments. Every fragment gets a navigation entry, a live preview
frame and its README rendered next to it.

Key Features:
  • Fragment discovery with glob patterns
  • Shareable pattern URLs (?pattern=accordion:outline)
  • Theme switching for unstyled fragments
  • Resizable preview and documentation panes
  • WebSocket-based hot reload

Quick Start:
  patterns serve                  Start the shell on http://localhost:8080
  patterns list                   List all patterns
  patterns resolve accordion      Show what a pattern URL resolves to`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .patterns.yml, can also use PATTERNS_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig wires the configuration sources. Priority, highest first:
// flags, the --config file, PATTERNS_CONFIG_FILE, PATTERNS_* variables and
// finally .patterns.yml in the working directory.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("PATTERNS_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".patterns")
	}

	// PATTERNS_SERVER_PORT, PATTERNS_COMPONENTS_ROOT, ...
	viper.SetEnvPrefix("PATTERNS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.open", true)

	// A missing config file is fine; defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the configuration and attaches suggestions on failure.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		path := viper.ConfigFileUsed()
		if path == "" {
			path = defaultConfigFile
		}
		suggestions := errors.ConfigurationError(err.Error(), path, &errors.SuggestionContext{ConfigPath: path})
		return nil, errors.NewEnhancedError("Failed to load configuration", err, suggestions)
	}
	return cfg, nil
}

// newLogger builds the CLI logger from --log-level and --log-format.
func newLogger() (logging.Logger, error) {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	format := viper.GetString("log-format")
	if format == "" {
		format = "text"
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	}), nil
}

// scanCatalog discovers the fragments below the configured root.
func scanCatalog(ctx context.Context, cfg *config.Config, logger logging.Logger) (*registry.Catalog, *scanner.ComponentScanner, error) {
	componentScanner, err := scanner.NewComponentScanner(cfg.Components, registry.NewComponentRegistry(), logger)
	if err != nil {
		return nil, nil, errors.NewEnhancedError("Cannot read the components root", err, []errors.ErrorSuggestion{
			{
				Title:       "Check the components root",
				Description: "Fragments are discovered below components.root",
				Command:     "patterns serve --root ./src",
			},
		})
	}

	catalog, err := componentScanner.Scan(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan components: %w", err)
	}
	return catalog, componentScanner, nil
}
