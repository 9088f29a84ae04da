package types

// Inbound message tags. The host and player vocabularies overlap on
// game_intro and round_results, whose payload shapes differ by role; the
// guards check only the tag, so callers must decode with the payload type
// matching the role that owns the connection.
const (
	// Shared.
	TagPing         = "ping"
	TagGameIntro    = "game_intro"
	TagRoundResults = "round_results"
	TagSessionEnded = "session_ended"

	// Host side.
	TagLobbyUpdate    = "lobby_update"
	TagPlayerJoined   = "player_joined"
	TagPlayerLeft     = "player_left"
	TagQuestionStatus = "question_status"
	TagAnswerTally    = "answer_tally"
	TagGameComplete   = "game_complete"

	// Player side.
	TagQuestion     = "question"
	TagAnswerResult = "answer_result"
)

// Outbound message tags.
const (
	TagInit         = "init"
	TagPong         = "pong"
	TagSubmitAnswer = "submit_answer"
	TagStartGame    = "start_game"
	TagNextQuestion = "next_question"
	TagPause        = "pause"
	TagResume       = "resume"
	TagEndSession   = "end_session"
)

// Per-tag guards.
func IsPing(e Envelope) bool           { return Is(e, TagPing) }
func IsGameIntro(e Envelope) bool      { return Is(e, TagGameIntro) }
func IsRoundResults(e Envelope) bool   { return Is(e, TagRoundResults) }
func IsSessionEnded(e Envelope) bool   { return Is(e, TagSessionEnded) }
func IsLobbyUpdate(e Envelope) bool    { return Is(e, TagLobbyUpdate) }
func IsPlayerJoined(e Envelope) bool   { return Is(e, TagPlayerJoined) }
func IsPlayerLeft(e Envelope) bool     { return Is(e, TagPlayerLeft) }
func IsQuestionStatus(e Envelope) bool { return Is(e, TagQuestionStatus) }
func IsAnswerTally(e Envelope) bool    { return Is(e, TagAnswerTally) }
func IsGameComplete(e Envelope) bool   { return Is(e, TagGameComplete) }
func IsQuestion(e Envelope) bool       { return Is(e, TagQuestion) }
func IsAnswerResult(e Envelope) bool   { return Is(e, TagAnswerResult) }

// InitMessage is the first client frame after the transport opens.
type InitMessage struct {
	Type        string `json:"type"`
	Role        Role   `json:"role"`
	Token       string `json:"token,omitempty"`
	PlayerID    string `json:"player_id,omitempty"`
	PlayerToken string `json:"player_token,omitempty"`
}

// NewInitMessage builds the handshake frame for a role, carrying only the
// credential fields that role uses.
func NewInitMessage(role Role, creds Credentials) InitMessage {
	msg := InitMessage{Type: TagInit, Role: role}
	switch role {
	case RoleHost:
		msg.Token = creds.Token
	case RolePlayer:
		msg.PlayerID = creds.PlayerID
		msg.PlayerToken = creds.PlayerToken
	}
	return msg
}

// PongMessage answers a server heartbeat.
type PongMessage struct {
	Type string `json:"type"`
}

// NewPongMessage returns the heartbeat reply frame.
func NewPongMessage() PongMessage { return PongMessage{Type: TagPong} }

// SubmitAnswerMessage carries a player's chosen option for a question.
type SubmitAnswerMessage struct {
	Type        string `json:"type"`
	QuestionID  string `json:"question_id"`
	OptionIndex int    `json:"option_index"`
}

// NewSubmitAnswerMessage builds a submit_answer frame.
func NewSubmitAnswerMessage(questionID string, optionIndex int) SubmitAnswerMessage {
	return SubmitAnswerMessage{Type: TagSubmitAnswer, QuestionID: questionID, OptionIndex: optionIndex}
}

// ActionMessage is a host control intent with no payload beyond its tag.
type ActionMessage struct {
	Type string `json:"type"`
}

// NewActionMessage builds a host control frame (start_game, next_question,
// pause, resume, end_session).
func NewActionMessage(tag string) ActionMessage { return ActionMessage{Type: tag} }

// PlayerInfo describes one player in lobby and roster payloads.
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Team string `json:"team,omitempty"`
}

// TeamScore is one team's standing on the host scoreboard.
type TeamScore struct {
	Team  string `json:"team"`
	Score int    `json:"score"`
	Rank  int    `json:"rank,omitempty"`
}

// LobbyUpdate is the host's lobby snapshot.
type LobbyUpdate struct {
	Type    string       `json:"type"`
	Players []PlayerInfo `json:"players"`
	Teams   []string     `json:"teams,omitempty"`
}

// PlayerJoined announces a new player to the host.
type PlayerJoined struct {
	Type   string     `json:"type"`
	Player PlayerInfo `json:"player"`
}

// PlayerLeft announces a departed player to the host.
type PlayerLeft struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
}

// HostGameIntro opens a round on the host dashboard.
type HostGameIntro struct {
	Type        string `json:"type"`
	Round       int    `json:"round"`
	GameType    string `json:"game_type"`
	Description string `json:"description,omitempty"`
}

// QuestionStatus tracks broadcast progress of the current question.
type QuestionStatus struct {
	Type             string `json:"type"`
	QuestionID       string `json:"question_id"`
	Index            int    `json:"index"`
	Total            int    `json:"total"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	AnswersReceived  int    `json:"answers_received"`
}

// AnswerTally is the per-option answer distribution for the host.
type AnswerTally struct {
	Type       string `json:"type"`
	QuestionID string `json:"question_id"`
	Counts     []int  `json:"counts"`
}

// HostRoundResults is the host-side scoreboard at the end of a round.
type HostRoundResults struct {
	Type      string      `json:"type"`
	Round     int         `json:"round"`
	Standings []TeamScore `json:"standings"`
}

// GameComplete carries the final standings.
type GameComplete struct {
	Type      string      `json:"type"`
	Standings []TeamScore `json:"standings"`
	Winner    string      `json:"winner,omitempty"`
}

// SessionEnded terminates a session for either role.
type SessionEnded struct {
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

// PlayerGameIntro opens a round on the player client.
type PlayerGameIntro struct {
	Type     string `json:"type"`
	Round    int    `json:"round"`
	GameType string `json:"game_type"`
	Team     string `json:"team,omitempty"`
}

// Question is a question pushed to a player.
type Question struct {
	Type             string   `json:"type"`
	QuestionID       string   `json:"question_id"`
	Text             string   `json:"text"`
	Options          []string `json:"options"`
	Index            int      `json:"index"`
	Total            int      `json:"total"`
	TimeLimitSeconds int      `json:"time_limit_seconds"`
}

// AnswerResult grades a player's submitted answer.
type AnswerResult struct {
	Type          string `json:"type"`
	QuestionID    string `json:"question_id"`
	Correct       bool   `json:"correct"`
	CorrectOption int    `json:"correct_option"`
	PointsAwarded int    `json:"points_awarded"`
}

// PlayerRoundResults is the player-side round summary. YourScore is
// optional on the wire; a nil pointer means the server sent no personal
// score and the team score stands alone.
type PlayerRoundResults struct {
	Type      string `json:"type"`
	Round     int    `json:"round"`
	YourScore *int   `json:"your_score,omitempty"`
	TeamScore int    `json:"team_score"`
	Rank      int    `json:"rank,omitempty"`
}
