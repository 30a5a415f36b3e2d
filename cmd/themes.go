package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/conneroisu/patterns/internal/theme"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the configured themes",
	Long: `List the themes offered by the shell's theme selector, in selector order.
With --check every theme stylesheet is fetched once and its size reported,
which catches dead CDN links before a reader does.

Examples:
  patterns themes              # Table of themes
  patterns themes --check      # Fetch every stylesheet
  patterns themes -o yaml      # Output as YAML`,
	RunE: runThemes,
}

var (
	themesFlags   *StandardFlags
	themesCheck   bool
	themesTimeout time.Duration
)

// themeRow is one theme as printed by themes.
type themeRow struct {
	Value  string `json:"value" yaml:"value"`
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Bytes  int    `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

func init() {
	rootCmd.AddCommand(themesCmd)

	themesFlags = AddStandardFlags(themesCmd, "output")
	themesCmd.Flags().BoolVar(&themesCheck, "check", false, "Fetch every theme stylesheet")
	themesCmd.Flags().DurationVar(&themesTimeout, "timeout", 10*time.Second, "Timeout per stylesheet fetch")
}

func runThemes(cmd *cobra.Command, args []string) error {
	if err := themesFlags.ValidateFlags(); err != nil {
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

	fetcher := theme.NewFetcher(cfg.Themes, &http.Client{Timeout: themesTimeout}, logger)
	rows := make([]themeRow, len(fetcher.Themes()))
	for i, t := range fetcher.Themes() {
		rows[i] = themeRow{Value: t.Value, Name: t.Name, Source: t.Source}
	}

	failed := 0
	if themesCheck {
		failed = checkThemes(cmd.Context(), fetcher, rows)
	}

	out := cmd.OutOrStdout()
	if themesFlags.Format() == FormatTable {
		err = outputThemeTable(out, rows)
	} else {
		err = writeStructured(out, themesFlags.Format(), rows)
	}
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d theme stylesheets could not be fetched", failed, len(rows))
	}
	return nil
}

// checkThemes fetches every stylesheet concurrently and records the result
// in rows. It returns the number of failures.
func checkThemes(ctx context.Context, fetcher *theme.Fetcher, rows []themeRow) int {
	if ctx == nil {
		ctx = context.Background()
	}

	var g errgroup.Group
	g.SetLimit(4)
	for i := range rows {
		if rows[i].Source == "" {
			continue
		}
		g.Go(func() error {
			css, err := fetcher.CSS(ctx, rows[i].Value)
			if err != nil {
				rows[i].Error = err.Error()
				return nil
			}
			rows[i].Bytes = len(css)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, row := range rows {
		if row.Error != "" {
			failed++
		}
	}
	return failed
}

func outputThemeTable(out io.Writer, rows []themeRow) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "VALUE\tNAME\tSOURCE\tSTATUS")
	for _, row := range rows {
		value := row.Value
		if value == "" {
			value = `""`
		}
		source := row.Source
		if source == "" {
			source = "-"
		}

		status := ""
		switch {
		case row.Error != "":
			status = "error: " + row.Error
		case row.Bytes > 0:
			status = fmt.Sprintf("ok (%d bytes)", row.Bytes)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", value, row.Name, source, status)
	}

	return w.Flush()
}
