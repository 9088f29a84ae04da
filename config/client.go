package config

import (
	"os"
	"strconv"
	"time"
)

// Client holds configuration for the quiz-party client SDK.
type Client struct {
	// APIBaseURL is the backend REST base, e.g. "http://localhost:8000".
	// The "/api/{namespace}" prefix is appended by the API client.
	APIBaseURL string

	// WSBaseURL is the WebSocket base, e.g. "ws://localhost:8000".
	// When empty it is derived from APIBaseURL by swapping the scheme.
	WSBaseURL string

	// Namespace is the URL namespace shared by REST and WebSocket paths.
	Namespace string

	RequestTimeout        time.Duration
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	MaxReconnectAttempts  int

	// TokenTTL bounds how long a player bearer token is held in memory.
	TokenTTL time.Duration
}

// Default returns a Client config with sensible defaults.
func Default() *Client {
	return &Client{
		APIBaseURL:            "http://localhost:8000",
		Namespace:             "quiz",
		RequestTimeout:        10 * time.Second,
		ReconnectInitialDelay: time.Second,
		ReconnectMaxDelay:     15 * time.Second,
		MaxReconnectAttempts:  10,
		TokenTTL:              4 * time.Hour,
	}
}

// FromEnv loads client configuration from environment variables.
// Falls back to defaults for any missing values.
func FromEnv() *Client {
	cfg := Default()

	if v := os.Getenv("QUIZPARTY_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("QUIZPARTY_WS_URL"); v != "" {
		cfg.WSBaseURL = v
	}
	if v := os.Getenv("QUIZPARTY_NAMESPACE"); v != "" {
		cfg.Namespace = v
	}
	if v := os.Getenv("QUIZPARTY_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("QUIZPARTY_MAX_RECONNECTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxReconnectAttempts = n
		}
	}
	return cfg
}

// WSBase returns the effective WebSocket base URL, deriving one from
// APIBaseURL when no explicit WSBaseURL is configured.
func (c *Client) WSBase() string {
	if c.WSBaseURL != "" {
		return c.WSBaseURL
	}
	return swapScheme(c.APIBaseURL)
}

func swapScheme(httpURL string) string {
	switch {
	case len(httpURL) >= 8 && httpURL[:8] == "https://":
		return "wss://" + httpURL[8:]
	case len(httpURL) >= 7 && httpURL[:7] == "http://":
		return "ws://" + httpURL[7:]
	default:
		return httpURL
	}
}
