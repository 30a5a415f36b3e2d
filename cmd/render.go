package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/conneroisu/patterns/internal/docs"
	"github.com/conneroisu/patterns/internal/errors"
	"github.com/conneroisu/patterns/internal/markdown"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Render a markdown file to HTML",
	Long: `Render a markdown file with the configured README engine and print the
HTML. Use "-" to read from standard input.

The light engine handles headings, paragraphs, lists, fenced code and inline
bold, italics, code and links; the goldmark engine renders CommonMark with
GitHub extensions.

Examples:
  patterns render README.md                # Configured engine
  patterns render README.md --engine goldmark
  patterns render README.md --root-readme  # Apply root README rewriting
  cat notes.md | patterns render -`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var (
	renderEngine     string
	renderRootReadme bool
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderEngine, "engine", "e", "", "Markdown engine (light, goldmark), defaults to docs.engine")
	renderCmd.Flags().BoolVar(&renderRootReadme, "root-readme", false, "Rewrite the file the way the root README is shown")
}

func runRender(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	engineName := renderEngine
	var basePath string
	if engineName == "" || renderRootReadme {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if engineName == "" {
			engineName = cfg.Docs.Engine
		}
		basePath = cfg.Server.BasePath
	}

	engine, err := markdown.New(engineName)
	if err != nil {
		return errors.NewEnhancedError("Unknown markdown engine", err, []errors.ErrorSuggestion{
			{
				Title:       "Pick a supported engine",
				Description: "The light engine matches the shell's built-in renderer",
				Command:     "patterns render " + args[0] + " --engine light",
			},
		})
	}

	if renderRootReadme {
		source = docs.NormalizeRootReadme(source, basePath)
	}

	html, err := engine.Render(source)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", args[0], err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
	return err
}

func readSource(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.WrapIO(err, errors.ErrCodeFileNotFound, "reading standard input")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return "", errors.WrapIO(err, errors.ErrCodeFileNotFound, "reading markdown file").WithFile(name)
	}
	return string(data), nil
}
