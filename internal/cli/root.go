// Package cli implements the hapticbake command line: validating haptic
// map files, baking them onto an avatar rig and listing stored bakes.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"haptics-installer/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hapticbake",
		Short: "Install and optimize haptic sensor maps on avatars",
		Long: `Build haptic sensor prefabs from map files, fit them to the avatar's
body surface and merge them into one optimized integration object.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (.json, .yaml or .toml)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewBakeCommand(opts))
	cmd.AddCommand(NewListCommand(opts))

	return cmd
}

// logger writes text logs to w, at debug level when verbose.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// appConfig loads the config file, if any, and applies flags and defaults.
func (o *RootOptions) appConfig(flags config.Flags) (config.Config, error) {
	var cfg config.Config
	if o.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(o.ConfigPath); err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "load config", err)
		}
	}
	cfg.Resolve(flags)
	return cfg, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
