package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ryan-RCNR/quiz-party/config"
	"github.com/Ryan-RCNR/quiz-party/src/api"
	"github.com/Ryan-RCNR/quiz-party/src/client"
	"github.com/Ryan-RCNR/quiz-party/src/types"
)

func newHostCmd(flags *rootFlags, v *viper.Viper) *cobra.Command {
	var (
		token     string
		create    bool
		name      string
		bankID    string
		preset    string
		chaos     int
		teamCount int
	)

	cmd := &cobra.Command{
		Use:   "host [session-code]",
		Short: "Run the host dashboard for a session.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := buildConfig(flags, v)
			logger := newLogger(flags.verbose)
			if token == "" {
				token = v.GetString("token")
			}

			rest := api.New(cfg, logger)
			rest.SetToken(token)

			code := ""
			if len(args) == 1 {
				code = args[0]
			}
			if create {
				info, err := rest.CreateSession(cmd.Context(), api.CreateSessionRequest{
					Name:           name,
					QuestionBankID: bankID,
					Preset:         preset,
					ChaosLevel:     chaos,
					TeamCount:      teamCount,
				})
				if err != nil {
					return fmt.Errorf("creating session: %w", err)
				}
				code = info.Code
				fmt.Printf("session created, join code: %s\n", info.JoinCode)
			}
			if code == "" {
				return fmt.Errorf("a session code or --create is required")
			}

			return runHost(cmd.Context(), cfg, logger, code, token)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&token, "token", "", "host bearer token (env: QUIZPARTY_TOKEN)")
	fs.BoolVar(&create, "create", false, "create a new session before hosting")
	fs.StringVar(&name, "name", "Quiz Night", "session name (with --create)")
	fs.StringVar(&bankID, "bank", "", "question bank id (with --create)")
	fs.StringVar(&preset, "preset", "classic", "game preset (with --create)")
	fs.IntVar(&chaos, "chaos", 0, "chaos level (with --create)")
	fs.IntVar(&teamCount, "teams", 2, "team count (with --create)")

	return cmd
}

func runHost(ctx context.Context, cfg *config.Client, logger zerolog.Logger, code, token string) error {
	host, err := client.NewHost(client.HostOptions{
		SessionCode: code,
		Token:       token,
		Config:      cfg,
		Logger:      logger,
		Handlers: client.HostHandlers{
			OnLobbyUpdate: func(m types.LobbyUpdate) {
				fmt.Printf("lobby: %d player(s)\n", len(m.Players))
			},
			OnPlayerJoined: func(m types.PlayerJoined) {
				fmt.Printf("joined: %s (team %s)\n", m.Player.Name, m.Player.Team)
			},
			OnPlayerLeft: func(m types.PlayerLeft) {
				fmt.Printf("left: %s\n", m.PlayerID)
			},
			OnGameIntro: func(m types.HostGameIntro) {
				fmt.Printf("round %d: %s\n", m.Round, m.GameType)
			},
			OnQuestionStatus: func(m types.QuestionStatus) {
				fmt.Printf("question %d/%d: %d answer(s) in\n", m.Index+1, m.Total, m.AnswersReceived)
			},
			OnAnswerTally: func(m types.AnswerTally) {
				fmt.Printf("tally for %s: %v\n", m.QuestionID, m.Counts)
			},
			OnRoundResults: func(m types.HostRoundResults) {
				fmt.Printf("round %d results:\n", m.Round)
				for _, s := range m.Standings {
					fmt.Printf("  %s: %d\n", s.Team, s.Score)
				}
			},
			OnGameComplete: func(m types.GameComplete) {
				fmt.Printf("game over, winner: %s\n", m.Winner)
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
	defer host.Close()

	fmt.Println("commands: start | next | pause | resume | end | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "start":
			host.StartGame()
		case "next":
			host.NextQuestion()
		case "pause":
			host.Pause()
		case "resume":
			host.Resume()
		case "end":
			host.EndSession()
		case "quit":
			return nil
		case "":
		default:
			fmt.Println("commands: start | next | pause | resume | end | quit")
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}
