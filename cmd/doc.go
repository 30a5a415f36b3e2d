// Package cmd provides the command-line interface for patterns.
//
// This package implements the CLI commands using the Cobra framework. The
// commands share one configuration pipeline (flags, environment, config
// file) and one component scan, so what `patterns list` prints is exactly
// what `patterns serve` shows in the navigation.
//
// # Available Commands
//
//   - serve: Start the documentation shell with hot reload
//   - list: List discovered components, variants and their patterns
//   - resolve: Print the UI state a pattern query resolves to
//   - render: Render a markdown file with the configured engine
//   - themes: List the configured themes, optionally checking their sources
//   - config: Show or validate the effective configuration
//   - version: Print build information
//
// # Command Examples
//
//	// Serve the library below /patterns/ on port 3000
//	patterns serve --port 3000 --base /patterns/ --no-open
//
//	// List patterns as JSON
//	patterns list --output json
//
//	// See where a shared link ends up
//	patterns resolve accordion:outline
//
//	// Preview a README the way the shell renders it
//	patterns render src/components/accordion/base/README.md
//
// # Configuration
//
// Configuration is read from .patterns.yml, PATTERNS_* environment variables
// and command-line flags, with flags taking precedence. PATTERNS_CONFIG_FILE
// points at a different configuration file.
package cmd
