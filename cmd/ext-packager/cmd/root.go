package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clipmaster/ext-packager/internal/config"
	"github.com/clipmaster/ext-packager/internal/logger"
	"github.com/clipmaster/ext-packager/internal/service/packager"
	"github.com/clipmaster/ext-packager/internal/service/watcher"
	"github.com/clipmaster/ext-packager/internal/version"
)

var (
	// configPath is the path to the configuration YAML file.
	configPath string

	// logLevel sets the verbosity of console output.
	logLevel string

	// extraExcludes holds additional substring exclusion rules from flags.
	extraExcludes []string

	// rootCmd represents the base command that builds the submission package.
	rootCmd = &cobra.Command{
		Use:   "ext-packager [source-dir] [output-archive]",
		Short: "Package a GNOME Shell extension directory for extensions.gnome.org",
		Long: "Package a GNOME Shell extension directory into a zip archive suitable " +
			"for upload to extensions.gnome.org. Development artifacts (.git, editor " +
			"swap files, compiled schemas) are excluded, archive entries sit at the " +
			"archive root, and a checksum manifest is written next to the result.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return packager.Run(ctx, optionsFromArgs(args))
		},
	}

	// watchCmd repackages on every change of the source directory.
	watchCmd = &cobra.Command{
		Use:   "watch [source-dir] [output-archive]",
		Short: "Repackage automatically whenever the extension source changes",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return watcher.Run(ctx, optionsFromArgs(args))
		},
	}
)

// optionsFromArgs maps optional positional arguments and flags onto packager options.
func optionsFromArgs(args []string) *packager.Options {
	opts := &packager.Options{
		ConfigPath:    configPath,
		ExtraExcludes: extraExcludes,
	}

	if len(args) > 0 {
		opts.SourceDir = args[0]
	}

	if len(args) > 1 {
		opts.OutputFile = args[1]
	}

	return opts
}

// Execute runs the ext-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringSliceVarP(&extraExcludes, "exclude", "e",
		nil, "additional exclusion substrings")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if level, ok := logger.ParseLogLevel(logLevel); ok {
			logger.SetLevel(level)
		}
	}

	rootCmd.AddCommand(watchCmd)
}
