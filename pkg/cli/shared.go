package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/scarabhk/releasetools/pkg/bundle"
	"github.com/scarabhk/releasetools/pkg/config"
	macContext "github.com/scarabhk/releasetools/pkg/context"
	"github.com/scarabhk/releasetools/pkg/logging"
	"github.com/scarabhk/releasetools/pkg/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// SetupLogger creates and configures a logger based on debug mode
func SetupLogger(debug bool) *logrus.Logger {
	logger := logrus.New()

	if debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logging.BulletFormatter{})
	}

	return logger
}

// exitWithError reports err and exits with exitCode(err)
func exitWithError(cmd *cobra.Command, logger *logrus.Logger, err error) {
	reportError(logger, cmd.OutOrStdout(), err)
	os.Exit(exitCode(err))
}

// reportError writes the plain "Error: <dir> is not an .app folder." line to
// stdout for a suffix mismatch and logs everything else.
func reportError(logger *logrus.Logger, stdout io.Writer, err error) {
	var nb *bundle.NotBundleError
	if errors.As(err, &nb) {
		fmt.Fprintf(stdout, "Error: %s\n", nb.Error())
		return
	}
	logger.Error(err)
}

// exitCode maps a suffix mismatch to -1 and any other failure to 1
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, bundle.ErrNotBundle):
		return -1
	default:
		return 1
	}
}

// addPersistentFlags registers the flags shared by both tools
func addPersistentFlags(cmd *cobra.Command, name string) {
	cmd.PersistentFlags().String("config", config.DefaultPath, "config file path")
	cmd.PersistentFlags().Bool("debug", false, "enable debug mode")
	cmd.Version = version.VersionInfo(name)
	cmd.SetVersionTemplate("{{.Version}}\n")
}

// loadConfig reads --config. The file may be absent unless the flag was set
// explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	required := cmd.Flags().Changed("config")

	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newCommandContext sets up the logger, configuration and pipeline context
// common to both tools.
func newCommandContext(cmd *cobra.Command) (*macContext.Context, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	logger := SetupLogger(debug)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return macContext.NewContext(cmd.Context(), config.Default(), logger), err
	}

	return macContext.NewContext(commandStdContext(cmd), cfg, logger), nil
}

func commandStdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
