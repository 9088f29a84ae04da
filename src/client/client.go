// Package client provides the high-level typed API for both roles,
// wiring the connection manager and the message dispatcher together.
package client

import (
	"github.com/rs/zerolog"

	"github.com/Ryan-RCNR/quiz-party/config"
	"github.com/Ryan-RCNR/quiz-party/src/conn"
	"github.com/Ryan-RCNR/quiz-party/src/dispatch"
	"github.com/Ryan-RCNR/quiz-party/src/types"
)

// handle decodes a frame into the handler's payload type. Frames that do
// not decode are dropped, matching the boundary policy for malformed input.
func handle[T any](logger zerolog.Logger, tag string, cb func(T)) dispatch.HandlerFunc {
	return func(env types.Envelope) {
		if cb == nil {
			return
		}
		var msg T
		if err := env.Decode(&msg); err != nil {
			logger.Debug().Err(err).Str("tag", tag).Msg("dropping undecodable payload")
			return
		}
		cb(msg)
	}
}

// HostHandlers are the typed callbacks for a host connection. All are
// optional; frames with an unset handler are ignored.
type HostHandlers struct {
	OnLobbyUpdate    func(types.LobbyUpdate)
	OnPlayerJoined   func(types.PlayerJoined)
	OnPlayerLeft     func(types.PlayerLeft)
	OnGameIntro      func(types.HostGameIntro)
	OnQuestionStatus func(types.QuestionStatus)
	OnAnswerTally    func(types.AnswerTally)
	OnRoundResults   func(types.HostRoundResults)
	OnGameComplete   func(types.GameComplete)
	OnSessionEnded   func(types.SessionEnded)

	OnState     func(types.ConnState)
	OnError     func(error)
	OnExhausted func()
}

// HostOptions configures a HostClient.
type HostOptions struct {
	SessionCode string
	Token       string
	Endpoint    string
	Config      *config.Client
	Dialer      conn.Dialer
	Logger      zerolog.Logger
	Handlers    HostHandlers
}

// HostClient is the dashboard-side connection: it streams lobby and game
// events and sends control intents.
type HostClient struct {
	mgr *conn.Manager
}

// NewHost opens a host connection for a session.
func NewHost(opts HostOptions) (*HostClient, error) {
	logger := opts.Logger.With().Str("component", "host-client").Logger()
	h := opts.Handlers

	d := dispatch.New(map[string]dispatch.HandlerFunc{
		types.TagLobbyUpdate:    handle(logger, types.TagLobbyUpdate, h.OnLobbyUpdate),
		types.TagPlayerJoined:   handle(logger, types.TagPlayerJoined, h.OnPlayerJoined),
		types.TagPlayerLeft:     handle(logger, types.TagPlayerLeft, h.OnPlayerLeft),
		types.TagGameIntro:      handle(logger, types.TagGameIntro, h.OnGameIntro),
		types.TagQuestionStatus: handle(logger, types.TagQuestionStatus, h.OnQuestionStatus),
		types.TagAnswerTally:    handle(logger, types.TagAnswerTally, h.OnAnswerTally),
		types.TagRoundResults:   handle(logger, types.TagRoundResults, h.OnRoundResults),
		types.TagGameComplete:   handle(logger, types.TagGameComplete, h.OnGameComplete),
		types.TagSessionEnded:   handle(logger, types.TagSessionEnded, h.OnSessionEnded),
	})

	mgr, err := conn.Open(conn.Options{
		SessionCode: opts.SessionCode,
		Role:        types.RoleHost,
		Credentials: types.Credentials{Token: opts.Token},
		Endpoint:    opts.Endpoint,
		Config:      opts.Config,
		Dialer:      opts.Dialer,
		Logger:      opts.Logger,
		OnMessage: func(env types.Envelope) {
			if !d.Dispatch(env) {
				logger.Debug().Str("tag", env.Type).Msg("unhandled message")
			}
		},
		OnState:     h.OnState,
		OnError:     h.OnError,
		OnExhausted: h.OnExhausted,
	})
	if err != nil {
		return nil, err
	}
	return &HostClient{mgr: mgr}, nil
}

// State returns the connection state.
func (c *HostClient) State() types.ConnState { return c.mgr.State() }

// StartGame asks the backend to begin the first round.
func (c *HostClient) StartGame() { c.mgr.Send(types.NewActionMessage(types.TagStartGame)) }

// NextQuestion advances to the next question.
func (c *HostClient) NextQuestion() { c.mgr.Send(types.NewActionMessage(types.TagNextQuestion)) }

// Pause suspends the current round.
func (c *HostClient) Pause() { c.mgr.Send(types.NewActionMessage(types.TagPause)) }

// Resume continues a paused round.
func (c *HostClient) Resume() { c.mgr.Send(types.NewActionMessage(types.TagResume)) }

// EndSession terminates the session for everyone.
func (c *HostClient) EndSession() { c.mgr.Send(types.NewActionMessage(types.TagEndSession)) }

// Close tears the connection down.
func (c *HostClient) Close() { c.mgr.Close() }

// PlayerHandlers are the typed callbacks for a player connection.
type PlayerHandlers struct {
	OnGameIntro    func(types.PlayerGameIntro)
	OnQuestion     func(types.Question)
	OnAnswerResult func(types.AnswerResult)
	OnRoundResults func(types.PlayerRoundResults)
	OnSessionEnded func(types.SessionEnded)

	OnState     func(types.ConnState)
	OnError     func(error)
	OnExhausted func()
}

// PlayerOptions configures a PlayerClient.
type PlayerOptions struct {
	SessionCode string
	PlayerID    string
	PlayerToken string
	Endpoint    string
	Config      *config.Client
	Dialer      conn.Dialer
	Logger      zerolog.Logger
	Handlers    PlayerHandlers
}

// PlayerClient is the player-side connection: it receives questions and
// results and submits answers.
type PlayerClient struct {
	mgr *conn.Manager
}

// NewPlayer opens a player connection for a session.
func NewPlayer(opts PlayerOptions) (*PlayerClient, error) {
	logger := opts.Logger.With().Str("component", "player-client").Logger()
	h := opts.Handlers

	d := dispatch.New(map[string]dispatch.HandlerFunc{
		types.TagGameIntro:    handle(logger, types.TagGameIntro, h.OnGameIntro),
		types.TagQuestion:     handle(logger, types.TagQuestion, h.OnQuestion),
		types.TagAnswerResult: handle(logger, types.TagAnswerResult, h.OnAnswerResult),
		types.TagRoundResults: handle(logger, types.TagRoundResults, h.OnRoundResults),
		types.TagSessionEnded: handle(logger, types.TagSessionEnded, h.OnSessionEnded),
	})

	mgr, err := conn.Open(conn.Options{
		SessionCode: opts.SessionCode,
		Role:        types.RolePlayer,
		Credentials: types.Credentials{PlayerID: opts.PlayerID, PlayerToken: opts.PlayerToken},
		Endpoint:    opts.Endpoint,
		Config:      opts.Config,
		Dialer:      opts.Dialer,
		Logger:      opts.Logger,
		OnMessage: func(env types.Envelope) {
			if !d.Dispatch(env) {
				logger.Debug().Str("tag", env.Type).Msg("unhandled message")
			}
		},
		OnState:     h.OnState,
		OnError:     h.OnError,
		OnExhausted: h.OnExhausted,
	})
	if err != nil {
		return nil, err
	}
	return &PlayerClient{mgr: mgr}, nil
}

// State returns the connection state.
func (c *PlayerClient) State() types.ConnState { return c.mgr.State() }

// SubmitAnswer sends the player's chosen option for a question. While
// disconnected the answer is queued for the next successful handshake.
func (c *PlayerClient) SubmitAnswer(questionID string, optionIndex int) {
	c.mgr.Send(types.NewSubmitAnswerMessage(questionID, optionIndex))
}

// Close tears the connection down.
func (c *PlayerClient) Close() { c.mgr.Close() }
