package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/conneroisu/patterns/internal/nav"
	"github.com/conneroisu/patterns/internal/registry"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List all discovered patterns",
	Long: `List every component variant below the components root with the pattern
that links to it, in navigation order.

Examples:
  patterns list                    # Table of patterns
  patterns list -o json            # Output as JSON
  patterns list --group forms      # Only the forms group
  patterns list -q                 # Patterns only, one per line`,
	RunE: runList,
}

var (
	listFlags *StandardFlags
	listGroup string
)

// patternRow is one variant as printed by list.
type patternRow struct {
	Pattern   string `json:"pattern" yaml:"pattern"`
	Component string `json:"component" yaml:"component"`
	Group     string `json:"group,omitempty" yaml:"group,omitempty"`
	Variant   string `json:"variant" yaml:"variant"`
	Fragment  string `json:"fragment" yaml:"fragment"`
	Readme    bool   `json:"readme" yaml:"readme"`
}

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddStandardFlags(listCmd, "output")
	listCmd.Flags().StringVarP(&listGroup, "group", "g", "", "Only list components of this group")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := listFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	catalog, _, err := scanCatalog(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	for _, skipped := range catalog.Skipped() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: skipped %s (not below components/)\n", skipped)
	}

	rows := patternRows(catalog, nav.NewCodec(cfg.Components.DefaultVariant), listGroup)
	out := cmd.OutOrStdout()

	if len(rows) == 0 {
		if listFlags.Format() == FormatTable {
			fmt.Fprintln(out, "No components found.")
			return nil
		}
		rows = []patternRow{}
	}

	switch listFlags.Format() {
	case FormatTable:
		if listFlags.Quiet {
			for _, row := range rows {
				fmt.Fprintln(out, row.Pattern)
			}
			return nil
		}
		return outputPatternTable(out, rows)
	default:
		return writeStructured(out, listFlags.Format(), rows)
	}
}

// patternRows flattens the catalog in navigation order: groups first, then
// ungrouped components.
func patternRows(catalog *registry.Catalog, codec nav.Codec, group string) []patternRow {
	var components []*registry.Component
	for _, g := range catalog.Groups() {
		if group == "" || g.Name == group {
			components = append(components, g.Components...)
		}
	}
	if group == "" {
		components = append(components, catalog.Ungrouped()...)
	}

	var rows []patternRow
	for _, comp := range components {
		for _, v := range comp.Variants {
			rows = append(rows, patternRow{
				Pattern:   codec.Format(comp.ID, v.Name),
				Component: comp.ID,
				Group:     comp.Group,
				Variant:   v.Name,
				Fragment:  v.Path,
				Readme:    catalog.HasReadme(registry.ReadmePath(v.Path)),
			})
		}
	}
	return rows
}

func outputPatternTable(out io.Writer, rows []patternRow) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "PATTERN\tGROUP\tVARIANT\tREADME\tFRAGMENT")
	fmt.Fprintln(w, strings.Join([]string{
		strings.Repeat("-", 7),
		strings.Repeat("-", 5),
		strings.Repeat("-", 7),
		strings.Repeat("-", 6),
		strings.Repeat("-", 8),
	}, "\t"))

	components := map[string]bool{}
	for _, row := range rows {
		components[row.Component] = true

		readme := "no"
		if row.Readme {
			readme = "yes"
		}
		group := row.Group
		if group == "" {
			group = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row.Pattern, group, row.Variant, readme, row.Fragment)
	}

	fmt.Fprintf(w, "\nTotal: %d patterns in %d components\n", len(rows), len(components))
	return w.Flush()
}
