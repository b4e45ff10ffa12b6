package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("durations and ints parse", func(t *testing.T) {
		t.Setenv("CRM_TIMEOUT", "5s")
		t.Setenv("DISPATCH_CONCURRENCY", "4")
		t.Setenv("CRM_BASE_URL", "https://crm.example.com/api/")

		cfg := Defaults()
		require.NoError(t, cfg.applyEnvOverrides())

		assert.Equal(t, 5*time.Second, cfg.CRMTimeout)
		assert.Equal(t, 4, cfg.DispatchConcurrency)
		assert.Equal(t, "https://crm.example.com/api", cfg.CRMBaseURL)
	})

	t.Run("bad duration is reported", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "forever")

		cfg := Defaults()
		err := cfg.applyEnvOverrides()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SESSION_TTL")
	})
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
crm_base_url: https://file.example.com
crm_timeout: 12s
audit_driver: sqlite
kafka_brokers: "k1:9092, ,k2:9092"
`), 0o600))

	t.Setenv("CONSOLE_CONFIG", path)
	t.Setenv("CRM_BASE_URL", "https://env.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.CRMBaseURL)
	assert.Equal(t, 12*time.Second, cfg.CRMTimeout)
	assert.Equal(t, "sqlite", cfg.AuditDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokerList())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing base url", func(c *Config) { c.CRMBaseURL = "" }, true},
		{"zero timeout", func(c *Config) { c.CRMTimeout = 0 }, true},
		{"zero concurrency", func(c *Config) { c.DispatchConcurrency = 0 }, true},
		{"unknown driver", func(c *Config) { c.AuditDriver = "mysql" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.CRMBaseURL = "https://crm.example.com"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
