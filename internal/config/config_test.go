package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claimguard/internal/common"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, ":5001", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "claimguard_session", cfg.Session.CookieName)
	assert.Equal(t, "bedrock", cfg.LLM.Provider)
	assert.Equal(t, "amazon.nova-micro-v1:0", cfg.LLM.Model)
	assert.Equal(t, "us-east-1", cfg.LLM.Region)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 100, cfg.Data.MaxRows)
	assert.Equal(t, 64, cfg.Notify.QueueSize)
	assert.False(t, cfg.Lambda.InvokeRemote)
	assert.Empty(t, cfg.Notify.WebhookURL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CLAIMGUARD_SERVER_ADDR", ":8080")
	t.Setenv("CLAIMGUARD_SESSION_BACKEND", "SQLite")
	t.Setenv("CLAIMGUARD_DATA_MAX_ROWS", "25")

	v := newViper()
	BindEnv(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Session.Backend)
	assert.Equal(t, 25, cfg.Data.MaxRows)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
auth:
  users:
    demo: "$2a$10$abcdefghijklmnopqrstuv"
llm:
  provider: openai
  api_key: sk-test
notify:
  webhook_url: https://hooks.example.com/abc
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"demo": "$2a$10$abcdefghijklmnopqrstuv"}, cfg.Auth.Users)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "https://hooks.example.com/abc", cfg.Notify.WebhookURL)
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	v := newViper()
	v.Set("llm.provider", "openai")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mutate  func(v *viper.Viper)
		wantErr error
		name    string
	}{
		{
			name:    "unknown session backend",
			mutate:  func(v *viper.Viper) { v.Set("session.backend", "redis") },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "unknown llm provider",
			mutate:  func(v *viper.Viper) { v.Set("llm.provider", "llama") },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "missing addr",
			mutate:  func(v *viper.Viper) { v.Set("server.addr", "") },
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "negative rate limit",
			mutate:  func(v *viper.Viper) { v.Set("llm.rate_limit", -1) },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "zero max rows",
			mutate:  func(v *viper.Viper) { v.Set("data.max_rows", 0) },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "sqlite without path",
			mutate:  func(v *viper.Viper) { v.Set("session.backend", "sqlite"); v.Set("session.path", "") },
			wantErr: common.ErrMissingConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			tt.mutate(v)

			_, err := Load(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("CLAIMGUARD_TEST_DIR", "/srv/claims")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "data.csv"), ExpandPath("~/data.csv"))
	assert.Equal(t, "/srv/claims/sessions.db", ExpandPath("$CLAIMGUARD_TEST_DIR/sessions.db"))
}
