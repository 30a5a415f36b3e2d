package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/conneroisu/patterns/internal/errors"
	"github.com/conneroisu/patterns/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the documentation shell with hot reload",
	Long: `Start the documentation shell. Fragments below the components root are
discovered on start and rescanned whenever a file changes; open pages reload
the frame, the README or the whole shell as needed.

Examples:
  patterns serve                        # Serve ./src on localhost:8080
  patterns serve --root ./site/src      # Serve another source tree
  patterns serve --base /patterns/      # Serve below a sub-path
  patterns serve -p 3000 --no-open      # Different port, no browser`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("no-open", false, "Don't open browser automatically")
	serveCmd.Flags().String("root", "./src", "Directory holding the components tree")
	serveCmd.Flags().String("base", "/", "Base path the shell is served below")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.no-open", serveCmd.Flags().Lookup("no-open"))
	viper.BindPFlag("components.root", serveCmd.Flags().Lookup("root"))
	viper.BindPFlag("server.base_path", serveCmd.Flags().Lookup("base"))

	AddFlagValidation(serveCmd, "port", ValidatePort)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Starting patterns server for %s\n", cfg.Components.Root)

	if err := srv.Start(ctx); err != nil {
		if errors.HasErrorCode(err, errors.ErrCodeListenFailed) {
			suggestions := errors.ServerStartError(err, cfg.Server.Port, &errors.SuggestionContext{
				ComponentsRoot: cfg.Components.Root,
			})
			return errors.NewEnhancedError(
				fmt.Sprintf("Failed to start server on port %d", cfg.Server.Port),
				err,
				suggestions,
			)
		}
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
