package conn

import (
	"sync"

	"github.com/fasthttp/websocket"

	"github.com/Ryan-RCNR/quiz-party/src/types"
)

// Dialer opens a WebSocket transport to the given URL.
// Abstracted for testability, mirroring types.Conn.
type Dialer interface {
	Dial(url string) (types.Conn, error)
}

// WebsocketDialer dials real WebSocket connections.
type WebsocketDialer struct{}

// Dial connects to url and wraps the connection as a types.Conn.
func (WebsocketDialer) Dial(url string) (types.Conn, error) {
	c, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	return &wsConn{conn: c}, nil
}

// wsConn adapts fasthttp/websocket.Conn to types.Conn. The underlying
// connection allows one writer at a time, so writes are serialized here;
// heartbeat replies and caller sends may race otherwise.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := w.conn.ReadMessage()
	return data, err
}

func (w *wsConn) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

func (w *wsConn) Close() error { return w.conn.Close() }
