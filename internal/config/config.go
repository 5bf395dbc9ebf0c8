// Package config parses the game hub's command-line flags and environment
// variables into a validated Config, following the teacher's cobra/viper
// wiring.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the service's runtime settings.
type Config struct {
	Bind             string
	Port             int
	LongPollTimeout  time.Duration
	Verbose          bool
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.LongPollTimeout <= 0 {
		return fmt.Errorf("invalid long-poll timeout (must be positive): %s", c.LongPollTimeout)
	}
	return nil
}

// Addr returns the bind address and port joined for http.Server.Addr.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// NewCommand builds the root cobra command. run is invoked with the parsed,
// validated Config once flags/env have resolved.
func NewCommand(run func(*Config) error) *cobra.Command {
	cfg := &Config{}
	v := viper.New()
	v.SetEnvPrefix("GAMEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "gamehub",
		Short:         "Backend for a multiplayer game-bot platform (Connect 4, Snake).",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: GAMEHUB_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: GAMEHUB_PORT)")
	fs.DurationVar(&cfg.LongPollTimeout, "long-poll-timeout", 30*time.Second, "bound on wait-for-update suspension (env: GAMEHUB_LONG_POLL_TIMEOUT)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "include query strings in request log lines (env: GAMEHUB_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}
