package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ryan-RCNR/quiz-party/src/api"
	"github.com/Ryan-RCNR/quiz-party/src/fetch"
)

func newSessionsCmd(flags *rootFlags, v *viper.Viper) *cobra.Command {
	var (
		token    string
		watch    bool
		interval time.Duration
		useRedis bool
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List live sessions, optionally polling for changes.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := buildConfig(flags, v)
			logger := newLogger(flags.verbose)
			if token == "" {
				token = v.GetString("token")
			}

			rest := api.New(cfg, logger)
			rest.SetToken(token)

			var store fetch.Store = fetch.NewMemoryStore()
			if useRedis {
				rs := fetch.NewRedisStore(fetch.RedisConfigFromEnv(), logger)
				if err := rs.Ping(cmd.Context()); err != nil {
					logger.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
				} else {
					defer rs.Close()
					store = rs
				}
			}
			cache := fetch.New(store, logger)

			list := func(ctx context.Context) (any, error) {
				return rest.ListSessions(ctx)
			}
			printResult := func(v any, err error) {
				if err != nil {
					fmt.Printf("error: %s\n", err)
					return
				}
				sessions, ok := v.([]api.SessionSummary)
				if !ok {
					// Redis-backed cache hits come back as raw JSON.
					fmt.Printf("%s\n", v)
					return
				}
				if len(sessions) == 0 {
					fmt.Println("no sessions")
					return
				}
				for _, s := range sessions {
					fmt.Printf("%-8s %-24s %-10s %d player(s)\n", s.Code, s.Name, s.Status, s.PlayerCount)
				}
			}

			if !watch {
				result, err := cache.Do(cmd.Context(), "sessions", 5*time.Second, list)
				if err != nil {
					return err
				}
				printResult(result, nil)
				return nil
			}

			poller := cache.Poll("sessions", interval/2, interval, true, list, printResult)
			defer poller.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&token, "token", "", "host bearer token (env: QUIZPARTY_TOKEN)")
	fs.BoolVarP(&watch, "watch", "w", false, "poll and reprint on an interval")
	fs.DurationVar(&interval, "interval", 5*time.Second, "poll interval (with --watch)")
	fs.BoolVar(&useRedis, "redis", false, "share the list cache via Redis (env: REDIS_ADDR)")

	return cmd
}
