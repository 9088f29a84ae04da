package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ryan-RCNR/quiz-party/src/api"
	"github.com/Ryan-RCNR/quiz-party/src/client"
	"github.com/Ryan-RCNR/quiz-party/src/session"
	"github.com/Ryan-RCNR/quiz-party/src/types"
)

func metadataPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "quizparty", "player.json")
}

func newPlayCmd(flags *rootFlags, v *viper.Viper) *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "play <session-code>",
		Short: "Join a session as a player and answer questions.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := buildConfig(flags, v)
			logger := newLogger(flags.verbose)
			code := args[0]

			rest := api.New(cfg, logger)
			store := session.NewStore(session.NewFileMetadataStore(metadataPath()), cfg.TokenTTL, logger)

			// A live in-memory token can only come from this run, so a
			// fresh join is needed unless the persisted metadata still
			// matches and the backend accepts a reconnect.
			auth, ok := store.Auth()
			if ok {
				if meta, hasMeta := store.Metadata(); !hasMeta || meta.SessionCode != code {
					ok = false
				}
			}
			if !ok {
				if displayName == "" {
					return fmt.Errorf("--name is required to join")
				}
				joined, err := rest.Join(cmd.Context(), code, displayName)
				if err != nil {
					return fmt.Errorf("joining session: %w", err)
				}
				store.Put(
					session.PlayerAuth{PlayerID: joined.PlayerID, Token: joined.PlayerToken},
					session.PlayerMetadata{
						PlayerID:    joined.PlayerID,
						DisplayName: joined.DisplayName,
						SessionCode: code,
						Team:        joined.Team,
					},
				)
				auth, _ = store.Auth()
				fmt.Printf("joined as %s (team %s)\n", joined.DisplayName, joined.Team)
			} else {
				state, err := rest.Reconnect(cmd.Context(), code, auth.Token)
				if err != nil {
					return fmt.Errorf("reconnecting: %w", err)
				}
				fmt.Printf("rejoined, team %s\n", state.Team)
			}

			var mu sync.Mutex
			currentQuestion := ""

			player, err := client.NewPlayer(client.PlayerOptions{
				SessionCode: code,
				PlayerID:    auth.PlayerID,
				PlayerToken: auth.Token,
				Config:      cfg,
				Logger:      logger,
				Handlers: client.PlayerHandlers{
					OnGameIntro: func(m types.PlayerGameIntro) {
						fmt.Printf("round %d: %s\n", m.Round, m.GameType)
					},
					OnQuestion: func(m types.Question) {
						mu.Lock()
						currentQuestion = m.QuestionID
						mu.Unlock()
						fmt.Printf("\nQ%d/%d (%ds): %s\n", m.Index+1, m.Total, m.TimeLimitSeconds, m.Text)
						for i, opt := range m.Options {
							fmt.Printf("  %d) %s\n", i+1, opt)
						}
						fmt.Print("> ")
					},
					OnAnswerResult: func(m types.AnswerResult) {
						if m.Correct {
							fmt.Printf("correct! +%d\n", m.PointsAwarded)
							return
						}
						fmt.Printf("wrong, answer was %d\n", m.CorrectOption+1)
					},
					OnRoundResults: func(m types.PlayerRoundResults) {
						if m.YourScore != nil {
							fmt.Printf("round %d: you scored %d, team total %d\n", m.Round, *m.YourScore, m.TeamScore)
							return
						}
						fmt.Printf("round %d: team total %d\n", m.Round, m.TeamScore)
					},
					OnSessionEnded: func(m types.SessionEnded) {
						fmt.Printf("session ended: %s\n", m.Reason)
					},
					OnState: func(s types.ConnState) {
						logger.Info().Str("state", s.String()).Msg("connection")
					},
					OnExhausted: func() {
						logger.Error().Msg("connection lost for good, restart to retry")
					},
				},
			})
			if err != nil {
				return err
			}
			defer player.Close()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				text := strings.TrimSpace(scanner.Text())
				if text == "quit" {
					return nil
				}
				choice, err := strconv.Atoi(text)
				if err != nil {
					continue
				}
				mu.Lock()
				qid := currentQuestion
				mu.Unlock()
				if qid == "" {
					fmt.Println("no question is open")
					continue
				}
				player.SubmitAnswer(qid, choice-1)
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&displayName, "name", "", "display name to join with")
	return cmd
}
