package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/unihaven")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, time.Hour, cfg.CompletionSweepInterval)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.AllowConfirmedCancellation)
	assert.False(t, cfg.EmailEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/unihaven")
	t.Setenv("ENV", "production")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("ALLOW_CONFIRMED_CANCELLATION", "true")
	t.Setenv("COMPLETION_SWEEP_INTERVAL", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.EmailEnabled())
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.True(t, cfg.AllowConfirmedCancellation)
	assert.Equal(t, 15*time.Minute, cfg.CompletionSweepInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing dsn", map[string]string{}},
		{"smtp without sender", map[string]string{"SMTP_HOST": "smtp.example.com"}},
		{"bad port", map[string]string{"SMTP_PORT": "abc"}},
		{"bad bool", map[string]string{"ALLOW_CONFIRMED_CANCELLATION": "maybe"}},
		{"non-positive interval", map[string]string{"COMPLETION_SWEEP_INTERVAL": "-1m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DSN", "postgres://localhost/unihaven")
			if tt.name == "missing dsn" {
				t.Setenv("DB_DSN", "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
