package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr":        "www.example:9000",
		"database_dsn":         "loans.db",
		"secret_key":           "my_secret_key",
		"token_validity":       "2h",
		"max_login_attempts":   3,
		"lock_window":          "1h",
		"session_ttl":          "90s",
		"upload_dir":           "var/uploads",
		"file_backend":         "s3",
		"s3_user":              "user",
		"s3_password":          "password",
		"s3_bucket":            "bucket",
		"s3_region":            "region",
		"s3_endpoint":          "base_endpoint",
		"super_admin_user":     "root",
		"super_admin_password": "rootpwd",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddr)
		assert.Equal(t, "loans.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.TokenValidity)
		assert.Equal(t, 3, cfg.MaxLoginAttempts)
		assert.Equal(t, 1*time.Hour, cfg.LockWindow)
		assert.Equal(t, 90*time.Second, cfg.SessionTTL)
		assert.Equal(t, "var/uploads", cfg.UploadDir)
		assert.Equal(t, "s3", cfg.FileBackend)
		assert.Equal(t, "user", cfg.S3User)
		assert.Equal(t, "password", cfg.S3Password)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3Endpoint)
		assert.Equal(t, "root", cfg.SuperAdminUser)
		assert.Equal(t, "rootpwd", cfg.SuperAdminPass)
	})

	t.Run("no config flag leaves values unchanged", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddr:     "defaults:1234",
			DatabaseDSN:      "loans.db",
			SecretKey:        "key",
			TokenValidity:    2 * time.Minute,
			MaxLoginAttempts: 7,
			LockWindow:       3 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddr)
		assert.Equal(t, "loans.db", cfg.DatabaseDSN)
		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, 2*time.Minute, cfg.TokenValidity)
		assert.Equal(t, 7, cfg.MaxLoginAttempts)
		assert.Equal(t, 3*time.Minute, cfg.LockWindow)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
