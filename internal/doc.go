// Package internal contains the implementation packages of the patterns
// documentation shell.
//
// # Package Organization
//
//   - config: Viper-backed configuration with defaults and validation
//   - registry: Catalog model built from discovered fragment paths, and the
//     registry that publishes catalogs and broadcasts component events
//   - scanner: Doublestar discovery of fragments and READMEs below the root
//   - nav: Query string codec that resolves a URL into navigation state
//   - layout: Preview/README pane split arithmetic
//   - markdown: Pluggable markdown engines (light and goldmark)
//   - docs: README loading, root README normalisation and fallbacks
//   - theme: Theme stylesheet fetching, caching and injection into fragments
//   - shell: Templ rendered shell page and its static assets
//   - server: HTTP routes, state API, hot reload and health
//   - watcher: fsnotify watching with debouncing
//   - websocket: Hot reload hub for connected browsers
//   - monitoring: Health checks behind /health
//   - validation: URL checks for the browser opener and theme sources
//   - errors: Structured errors and CLI suggestions
//   - logging: slog based structured logger
//   - version: Build information
//
// # Data Flow
//
// The scanner publishes a new catalog into the registry on startup and on
// every watcher batch. The server resolves each request against the current
// catalog through the nav codec, and forwards registry events and changed
// paths to browsers over the websocket hub.
package internal
