package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithSecretFromEnv(t *testing.T) {
	t.Setenv("RAGD_ADMIN_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "/var/lib/ragd", cfg.Storage.DataRoot)
	assert.Equal(t, "/var/lib/ragd/users.json", cfg.Storage.UsersFile)
	assert.Equal(t, "/var/lib/ragd/chroma", cfg.Storage.VectorPath)
	assert.Equal(t, "s3cret", cfg.Admin.Secret)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 1000, cfg.Pipeline.ChunkSize)
	assert.Equal(t, 3, cfg.Pipeline.TopK)
	assert.Equal(t, 60*time.Second, cfg.Pipeline.CallTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_RequiresAdminSecret(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin secret")
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
storage:
  data_root: /tmp/ragd-test
admin:
  secret: filesecret
pipeline:
  chunk_size: 500
  top_k: 5
logging:
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/ragd-test", cfg.Storage.DataRoot)
	assert.Equal(t, "/tmp/ragd-test/users.json", cfg.Storage.UsersFile)
	assert.Equal(t, "filesecret", cfg.Admin.Secret)
	assert.Equal(t, 500, cfg.Pipeline.ChunkSize)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\nadmin:\n  secret: filesecret\n"), 0o600))

	t.Setenv("RAGD_SERVER_PORT", "9100")
	t.Setenv("RAGD_ADMIN_SECRET", "envsecret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "envsecret", cfg.Admin.Secret)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	t.Setenv("RAGD_ADMIN_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad embedding provider",
			mutate:  func(c *Config) { c.Embedding.Provider = "cohere" },
			wantErr: "embedding provider",
		},
		{
			name:    "bad llm provider",
			mutate:  func(c *Config) { c.LLM.Provider = "llama" },
			wantErr: "llm provider",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "log format",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			cfg.Admin.Secret = "s"
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
