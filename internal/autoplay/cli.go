// Package autoplay drives a game through the HTTP API with random drag
// gestures. It is used for smoke testing a running service.
package autoplay

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/okian/oche/pkg/logger"
)

// NewCommand returns the autoplay root command.
func NewCommand() *cobra.Command {
	cfg := &Config{PollInterval: DefaultPollInterval}

	cmd := &cobra.Command{
		Use:   "autoplay",
		Short: "Play a drag game against a running oche service and print the ranking.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			} else {
				_ = logger.SetLevelString("warn")
			}
			_, err := Run(cmd.Context(), cfg, cmd.OutOrStdout())
			return err
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.BaseURL, "url", "u", DefaultBaseURL, "base URL of the service")
	fs.IntVarP(&cfg.Players, "players", "p", DefaultPlayers, "number of players (2-4)")
	fs.IntVarP(&cfg.MaxThrows, "max-throws", "n", DefaultMaxThrows, "stop after this many throws without a winner")
	fs.Int64Var(&cfg.Seed, "seed", 1, "seed of the gesture generator")
	fs.Float64Var(&cfg.Spread, "spread", DefaultSpread, "scatter around the bullseye; 0 hits it every time")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "HTTP timeout and per-throw wait")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every throw")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
