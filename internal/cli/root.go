// Package cli implements the dynplug command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dynplug-dev/dynplug-sdk/config"
)

var (
	cfgFile  string
	logLevel string

	// loaded by the root PersistentPreRunE
	cfg config.Config
	log zerolog.Logger
)

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dynplug.yaml"
	}
	return filepath.Join(home, ".dynplug", "config.yaml")
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dynplug",
		Short: "Dynplug loads and invokes native shared-library plugins",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				path = defaultConfigPath()
			}
			var err error
			cfg, err = config.Load(path)
			if err != nil {
				return err
			}

			level := cfg.LogLevel
			if logLevel != "" {
				level = logLevel
			}
			parsed, err := zerolog.ParseLevel(level)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", level, err)
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(parsed).
				With().Timestamp().Logger()
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.dynplug/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newDescribeCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command. Diagnostics go to stderr; the caller owns
// the exit code.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "dynplug:", err)
	}
	return err
}
