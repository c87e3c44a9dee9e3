package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "polychat.db", cfg.Storage.Path)
	assert.Equal(t, float64(5), cfg.Server.ChatRPS)
	assert.Equal(t, ":8080", cfg.Server.Addr())
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polychat.toml")
	content := `
[server]
host = "127.0.0.1"
port = 9090
chat_rps = 2.5
chat_burst = 4

[storage]
backend = "sqlite"
path = "/tmp/chats.db"

[providers.openai]
api_key = "sk-file"
base_url = "https://proxy.example.com/v1"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, 2.5, cfg.Server.ChatRPS)
	assert.Equal(t, 4, cfg.Server.ChatBurst)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/chats.db", cfg.Storage.Path)
	assert.Equal(t, "sk-file", cfg.Providers.OpenAI.APIKey)
	assert.Equal(t, "https://proxy.example.com/v1", cfg.Providers.OpenAI.BaseURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polychat.toml")
	content := `
[server]
port = 9090

[providers.openai]
api_key = "sk-file"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("POLYCHAT_PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ANTHROPIC_API_KEY", "ant-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sk-env", cfg.Providers.OpenAI.APIKey)
	assert.Equal(t, "ant-env", cfg.Providers.Anthropic.APIKey)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		t.Setenv("POLYCHAT_PORT", "99999")
		_, err := Load("")
		assert.ErrorContains(t, err, "invalid server port")
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("POLYCHAT_STORAGE_BACKEND", "postgres")
		_, err := Load("")
		assert.ErrorContains(t, err, "unknown storage backend")
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[server\nport="), 0o644))
		_, err := Load(path)
		assert.ErrorContains(t, err, "failed to load config file")
	})
}
