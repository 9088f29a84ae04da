package types

// Role identifies which side of a session a connection speaks for.
type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

// Valid reports whether the role is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleHost || r == RolePlayer
}

// ConnState is the observable lifecycle state of a connection.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

// String returns the string representation of a ConnState.
func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Credentials carries the role-appropriate handshake credential.
// Hosts authenticate with a bearer token; players with an id/token pair
// issued by the join endpoint. Unused fields stay empty.
type Credentials struct {
	Token       string
	PlayerID    string
	PlayerToken string
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}
