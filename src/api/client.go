// Package api is the REST client for the quiz backend's HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Ryan-RCNR/quiz-party/config"
)

// Client talks to the backend under /api/{namespace}. A host bearer token,
// when set, is attached best effort; its absence is not an error.
type Client struct {
	http   *fasthttp.Client
	base   string
	cfg    *config.Client
	logger zerolog.Logger

	mu    sync.RWMutex
	token string
}

// New creates a REST client from the given config.
func New(cfg *config.Client, logger zerolog.Logger) *Client {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Client{
		http:   &fasthttp.Client{},
		base:   fmt.Sprintf("%s/api/%s", cfg.APIBaseURL, cfg.Namespace),
		cfg:    cfg,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// SetToken sets the host bearer token attached to subsequent requests.
// An empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// do performs one JSON request. A nil body sends no payload; a non-nil out
// receives the decoded 2xx response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.SetBody(data)
	}

	timeout := c.cfg.RequestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return ErrTimeout
		}
		return err
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		apiErr := newError(status, resp.Body())
		c.logger.Debug().
			Int("status", status).
			Str("method", method).
			Str("path", path).
			Msg("request failed")
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// decodeList accepts either a bare JSON array or an object wrapping the
// array under wrapperKey; anything else yields an empty list.
func decodeList[T any](data []byte, wrapperKey string) []T {
	var items []T
	if err := json.Unmarshal(data, &items); err == nil {
		return items
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil
	}
	if raw, ok := wrapper[wrapperKey]; ok {
		if err := json.Unmarshal(raw, &items); err == nil {
			return items
		}
	}
	return nil
}

// ListSessions returns the host's sessions; a response without a list
// yields an empty slice, not an error.
func (c *Client) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	var raw json.RawMessage
	if err := c.do(ctx, fasthttp.MethodGet, "/sessions", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[SessionSummary](raw, "sessions"), nil
}

// CreateSession creates a session and returns its record with a join code.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.do(ctx, fasthttp.MethodPost, "/sessions", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetSession fetches one session by code.
func (c *Client) GetSession(ctx context.Context, code string) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.do(ctx, fasthttp.MethodGet, "/sessions/"+code, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// StartSession moves a session out of the lobby.
func (c *Client) StartSession(ctx context.Context, code string) error {
	return c.do(ctx, fasthttp.MethodPost, "/sessions/"+code+"/start", nil, nil)
}

// EndSession terminates a session.
func (c *Client) EndSession(ctx context.Context, code string) error {
	return c.do(ctx, fasthttp.MethodPost, "/sessions/"+code+"/end", nil, nil)
}

// Join enrolls a player into a session and returns their identity and
// bearer token.
func (c *Client) Join(ctx context.Context, code, displayName string) (*JoinResponse, error) {
	body := map[string]string{"display_name": displayName}
	var resp JoinResponse
	if err := c.do(ctx, fasthttp.MethodPost, "/sessions/"+code+"/join", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reconnect re-attaches a player by token and reports current team/status.
func (c *Client) Reconnect(ctx context.Context, code, playerToken string) (*ReconnectResponse, error) {
	body := map[string]string{"player_token": playerToken}
	var resp ReconnectResponse
	if err := c.do(ctx, fasthttp.MethodPost, "/sessions/"+code+"/reconnect", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListBanks returns the available question banks, tolerating either a bare
// array or a {"banks": [...]} wrapper.
func (c *Client) ListBanks(ctx context.Context) ([]QuestionBank, error) {
	var raw json.RawMessage
	if err := c.do(ctx, fasthttp.MethodGet, "/questions/banks", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[QuestionBank](raw, "banks"), nil
}

// CreateBank creates an empty question bank.
func (c *Client) CreateBank(ctx context.Context, req CreateBankRequest) (*QuestionBank, error) {
	var bank QuestionBank
	if err := c.do(ctx, fasthttp.MethodPost, "/questions/banks", req, &bank); err != nil {
		return nil, err
	}
	return &bank, nil
}

// GetBank fetches one bank with its questions.
func (c *Client) GetBank(ctx context.Context, id string) (*QuestionBank, error) {
	var bank QuestionBank
	if err := c.do(ctx, fasthttp.MethodGet, "/questions/banks/"+id, nil, &bank); err != nil {
		return nil, err
	}
	return &bank, nil
}

// AddQuestion appends a question to a bank.
func (c *Client) AddQuestion(ctx context.Context, bankID string, q BankQuestion) error {
	return c.do(ctx, fasthttp.MethodPost, "/questions/banks/"+bankID+"/questions", q, nil)
}
