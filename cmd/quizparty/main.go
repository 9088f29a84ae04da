// Command quizparty is a terminal client for live quiz sessions: the
// `host` subcommand drives a session, `play` joins one as a player.
package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Ryan-RCNR/quiz-party/config"
)

type rootFlags struct {
	apiURL    string
	wsURL     string
	namespace string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZPARTY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "quizparty",
		Short:         "Terminal client for live multiplayer quiz sessions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVar(&flags.apiURL, "api-url", "", "backend REST base URL (env: QUIZPARTY_API_URL)")
	fs.StringVar(&flags.wsURL, "ws-url", "", "backend WebSocket base URL (env: QUIZPARTY_WS_URL)")
	fs.StringVar(&flags.namespace, "namespace", "", "backend URL namespace (env: QUIZPARTY_NAMESPACE)")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "display debug output")

	cmd.AddCommand(newHostCmd(flags, v))
	cmd.AddCommand(newPlayCmd(flags, v))
	cmd.AddCommand(newSessionsCmd(flags, v))

	return cmd
}

// buildConfig layers flags over environment over defaults.
func buildConfig(flags *rootFlags, v *viper.Viper) *config.Client {
	cfg := config.FromEnv()
	if s := v.GetString("api-url"); flags.apiURL == "" && s != "" {
		cfg.APIBaseURL = s
	}
	if flags.apiURL != "" {
		cfg.APIBaseURL = flags.apiURL
	}
	if flags.wsURL != "" {
		cfg.WSBaseURL = flags.wsURL
	}
	if flags.namespace != "" {
		cfg.Namespace = flags.namespace
	}
	return cfg
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Stderr.WriteString("error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
