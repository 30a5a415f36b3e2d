package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/conneroisu/patterns/internal/docs"
	"github.com/conneroisu/patterns/internal/errors"
	"github.com/conneroisu/patterns/internal/markdown"
	"github.com/conneroisu/patterns/internal/nav"
	"github.com/conneroisu/patterns/internal/registry"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:     "resolve [pattern]",
	Aliases: []string{"r"},
	Short:   "Print the state a pattern URL resolves to",
	Long: `Resolve a pattern the way the shell resolves ?pattern= and print the
resulting state: the view, the component and variant shown, the fragment
loaded into the frame and the README next to it. Without a pattern the root
README view is printed.

Patterns that do not resolve fall back to the first component, exactly as
in the browser. Use --strict to fail instead.

Examples:
  patterns resolve accordion            # Default variant
  patterns resolve accordion:outline    # Named variant
  patterns resolve forms/radio -o json  # Grouped component as JSON
  patterns resolve nope --strict        # Fail on fallback`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

var (
	resolveFlags      *StandardFlags
	resolveStrict     bool
	resolveWithReadme bool
)

// resolveResult is the state plus the documents the shell would show.
type resolveResult struct {
	nav.State `yaml:",inline"`
	FrameURL  string         `json:"frame_url,omitempty" yaml:"frame_url,omitempty"`
	Readme    *docs.Document `json:"readme_document,omitempty" yaml:"readme_document,omitempty"`
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveFlags = AddStandardFlags(resolveCmd, "output")
	resolveCmd.Flags().BoolVar(&resolveStrict, "strict", false, "Fail when the pattern falls back")
	resolveCmd.Flags().BoolVar(&resolveWithReadme, "with-readme", false, "Include the rendered README")
}

func runResolve(cmd *cobra.Command, args []string) error {
	if err := resolveFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validatePatternArgs(args); err != nil {
		return err
	}

	pattern := ""
	if len(args) == 1 {
		pattern = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	catalog, componentScanner, err := scanCatalog(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	codec := nav.NewCodec(cfg.Components.DefaultVariant)
	state := codec.ResolvePattern(catalog, pattern)

	if state.Fallback && resolveStrict {
		return errors.NewEnhancedError(
			fmt.Sprintf("Pattern %q does not resolve", pattern),
			errors.ErrPatternNotFound(pattern),
			errors.PatternNotFoundError(pattern, &errors.SuggestionContext{
				Patterns:       availablePatterns(catalog, codec),
				ComponentsRoot: cfg.Components.Root,
			}),
		)
	}

	result := resolveResult{State: state}
	if state.Fragment != "" {
		result.FrameURL = cfg.Server.BasePath + "src/" + state.Fragment
	}

	if resolveWithReadme {
		engine, err := markdown.New(cfg.Docs.Engine)
		if err != nil {
			return err
		}
		loader := docs.NewLoader(componentScanner.FS(), engine, cfg, logger)

		var doc docs.Document
		if state.View == nav.ViewPattern {
			doc = loader.Pattern(cmd.Context(), catalog, state.Fragment)
		} else {
			doc = loader.Root(cmd.Context())
		}
		result.Readme = &doc
	}

	out := cmd.OutOrStdout()
	if resolveFlags.Format() != FormatTable {
		return writeStructured(out, resolveFlags.Format(), result)
	}
	if resolveFlags.Quiet {
		fmt.Fprintln(out, result.Pattern)
		return nil
	}
	if state.Fallback && pattern != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %q did not resolve, showing the fallback\n", pattern)
	}
	return outputResolveTable(out, result)
}

func availablePatterns(catalog *registry.Catalog, codec nav.Codec) []string {
	var patterns []string
	for _, comp := range catalog.Components() {
		for _, v := range comp.Variants {
			patterns = append(patterns, codec.Format(comp.ID, v.Name))
		}
	}
	return patterns
}

func outputResolveTable(out io.Writer, r resolveResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s:\t%s\n", name, value)
		}
	}
	field("View", string(r.View))
	field("Layout", string(r.Layout))
	field("Pattern", r.Pattern)
	field("Component", r.ComponentID)
	field("Variant", r.Variant)
	field("Fragment", r.Fragment)
	field("Frame URL", r.FrameURL)
	field("README", r.State.Readme)
	if r.Fallback {
		field("Requested", r.Requested)
		field("Fallback", "yes")
	}
	if r.Readme != nil {
		fmt.Fprintf(w, "\n%s\n", r.Readme.HTML)
	}

	return w.Flush()
}
