package api

// SessionSummary is one entry of the session list.
type SessionSummary struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	PlayerCount int    `json:"player_count"`
}

// SessionInfo is the full session record, including the join code handed
// out on creation.
type SessionInfo struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	JoinCode    string `json:"join_code"`
	TeamCount   int    `json:"team_count"`
	PlayerCount int    `json:"player_count"`
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	Name           string `json:"name"`
	QuestionBankID string `json:"question_bank_id"`
	Preset         string `json:"preset"`
	ChaosLevel     int    `json:"chaos_level"`
	TeamCount      int    `json:"team_count"`
}

// JoinResponse is the player identity issued by POST /sessions/{code}/join.
type JoinResponse struct {
	PlayerID    string `json:"player_id"`
	PlayerToken string `json:"player_token"`
	DisplayName string `json:"display_name"`
	Team        string `json:"team"`
}

// ReconnectResponse reports current team and status after a token reconnect.
type ReconnectResponse struct {
	PlayerID string `json:"player_id"`
	Team     string `json:"team"`
	Status   string `json:"status"`
}

// BankQuestion is one question inside a bank.
type BankQuestion struct {
	ID               string   `json:"id,omitempty"`
	Text             string   `json:"text"`
	Options          []string `json:"options"`
	CorrectOption    int      `json:"correct_option"`
	TimeLimitSeconds int      `json:"time_limit_seconds,omitempty"`
}

// QuestionBank is a named collection of questions.
type QuestionBank struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Questions []BankQuestion `json:"questions,omitempty"`
}

// CreateBankRequest is the body of POST /questions/banks.
type CreateBankRequest struct {
	Name string `json:"name"`
}
