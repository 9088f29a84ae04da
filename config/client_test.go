package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, "quiz", cfg.Namespace)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Second, cfg.ReconnectInitialDelay)
	assert.Equal(t, 15*time.Second, cfg.ReconnectMaxDelay)
	assert.Equal(t, 10, cfg.MaxReconnectAttempts)
	assert.Equal(t, 4*time.Hour, cfg.TokenTTL)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("QUIZPARTY_API_URL", "https://quiz.example.com")
	t.Setenv("QUIZPARTY_WS_URL", "wss://ws.example.com")
	t.Setenv("QUIZPARTY_NAMESPACE", "trivia")
	t.Setenv("QUIZPARTY_REQUEST_TIMEOUT", "3s")
	t.Setenv("QUIZPARTY_MAX_RECONNECTS", "5")

	cfg := FromEnv()
	assert.Equal(t, "https://quiz.example.com", cfg.APIBaseURL)
	assert.Equal(t, "wss://ws.example.com", cfg.WSBaseURL)
	assert.Equal(t, "trivia", cfg.Namespace)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.MaxReconnectAttempts)
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("QUIZPARTY_REQUEST_TIMEOUT", "soon")
	t.Setenv("QUIZPARTY_MAX_RECONNECTS", "-2")

	cfg := FromEnv()
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10, cfg.MaxReconnectAttempts)
}

func TestWSBaseDerivedFromAPIBase(t *testing.T) {
	cfg := Default()
	cfg.APIBaseURL = "http://localhost:8000"
	assert.Equal(t, "ws://localhost:8000", cfg.WSBase())

	cfg.APIBaseURL = "https://quiz.example.com"
	assert.Equal(t, "wss://quiz.example.com", cfg.WSBase())

	cfg.WSBaseURL = "ws://explicit:9000"
	assert.Equal(t, "ws://explicit:9000", cfg.WSBase())
}
