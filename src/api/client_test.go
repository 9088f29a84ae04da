package api

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/Ryan-RCNR/quiz-party/config"
)

// startBackend runs an in-process HTTP server and returns a client
// pointed at it.
func startBackend(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &fasthttp.Server{Handler: handler}
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Shutdown() })

	cfg := config.Default()
	cfg.APIBaseURL = "http://" + ln.Addr().String()
	return New(cfg, zerolog.Nop())
}

func TestListSessionsBareArray(t *testing.T) {
	c := startBackend(t, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "/api/quiz/sessions", string(ctx.Path()))
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`[{"code":"ABC123","name":"Friday Quiz","status":"lobby","player_count":4}]`)
	})

	sessions, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "ABC123", sessions[0].Code)
	assert.Equal(t, 4, sessions[0].PlayerCount)
}

func TestListSessionsWrappedObject(t *testing.T) {
	c := startBackend(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"sessions":[{"code":"XYZ789"}]}`)
	})

	sessions, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "XYZ789", sessions[0].Code)
}

func TestListSessionsEmptyObjectYieldsEmptyList(t *testing.T) {
	c := startBackend(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{}`)
	})

	sessions, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestJoinRejectionUsesDetailMessage(t *testing.T) {
	c := startBackend(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetBodyString(`{"detail":"Session is full"}`)
	})

	_, err := c.Join(context.Background(), "ABC123", "alice")
	require.Error(t, err)
	assert.Equal(t, "Session is full", err.Error())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, fasthttp.StatusBadRequest, apiErr.Status)
}

func TestErrorFallsBackToBodyThenStatus(t *testing.T) {
	c := startBackend(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusBadGateway)
		ctx.SetBodyString(`upstream unavailable`)
	})
	_, err := c.GetSession(context.Background(), "ABC123")
	require.Error(t, err)
	assert.Equal(t, "upstream unavailable", err.Error())

	c = startBackend(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	})
	_, err = c.GetSession(context.Background(), "ABC123")
	require.Error(t, err)
	assert.Equal(t, "HTTP 500", err.Error())
}

func TestBearerTokenAttachedBestEffort(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	c := startBackend(t, func(ctx *fasthttp.RequestCtx) {
		mu.Lock()
		seen = append(seen, string(ctx.Request.Header.Peek("Authorization")))
		mu.Unlock()
		ctx.SetBodyString(`[]`)
	})

	_, err := c.ListSessions(context.Background())
	require.NoError(t, err)

	c.SetToken("tok-123")
	_, err = c.ListSessions(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Empty(t, seen[0], "no token means no header, not an error")
	assert.Equal(t, "Bearer tok-123", seen[1])
}

func TestRequestTimesOutDistinguishably(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		time.Sleep(500 * time.Millisecond)
	}}
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Shutdown() })

	cfg := config.Default()
	cfg.APIBaseURL = "http://" + ln.Addr().String()
	cfg.RequestTimeout = 50 * time.Millisecond
	c := New(cfg, zerolog.Nop())

	_, err = c.ListSessions(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCreateSessionAndJoinRoundTrip(t *testing.T) {
	c := startBackend(t, func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/api/quiz/sessions":
			assert.Equal(t, "application/json", string(ctx.Request.Header.ContentType()))
			assert.Contains(t, string(ctx.PostBody()), `"question_bank_id":"bank-1"`)
			ctx.SetBodyString(`{"code":"ABC123","join_code":"ABC123","name":"Friday Quiz"}`)
		case "/api/quiz/sessions/ABC123/join":
			assert.Contains(t, string(ctx.PostBody()), `"display_name":"alice"`)
			ctx.SetBodyString(`{"player_id":"p1","player_token":"t1","display_name":"alice","team":"red"}`)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	})

	info, err := c.CreateSession(context.Background(), CreateSessionRequest{
		Name:           "Friday Quiz",
		QuestionBankID: "bank-1",
		Preset:         "classic",
		TeamCount:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", info.JoinCode)

	joined, err := c.Join(context.Background(), "ABC123", "alice")
	require.NoError(t, err)
	assert.Equal(t, "p1", joined.PlayerID)
	assert.Equal(t, "t1", joined.PlayerToken)
	assert.Equal(t, "red", joined.Team)
}

func TestQuestionBankEndpoints(t *testing.T) {
	c := startBackend(t, func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/api/quiz/questions/banks":
			if ctx.IsPost() {
				ctx.SetBodyString(`{"id":"bank-9","name":"Science"}`)
				return
			}
			ctx.SetBodyString(`{"banks":[{"id":"bank-1","name":"General"}]}`)
		case "/api/quiz/questions/banks/bank-9/questions":
			ctx.SetStatusCode(fasthttp.StatusCreated)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	})

	banks, err := c.ListBanks(context.Background())
	require.NoError(t, err)
	require.Len(t, banks, 1)
	assert.Equal(t, "General", banks[0].Name)

	bank, err := c.CreateBank(context.Background(), CreateBankRequest{Name: "Science"})
	require.NoError(t, err)
	assert.Equal(t, "bank-9", bank.ID)

	err = c.AddQuestion(context.Background(), "bank-9", BankQuestion{
		Text:          "Boiling point of water at sea level?",
		Options:       []string{"90C", "100C", "110C", "120C"},
		CorrectOption: 1,
	})
	assert.NoError(t, err)
}

func TestCancelledContextShortCircuits(t *testing.T) {
	c := startBackend(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`[]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListSessions(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
