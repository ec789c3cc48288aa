package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFilesMergesJSONThenDotEnv(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port":"9000","jwt_ttl":"30m","rate_limit":10}`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("APP_PORT=9100\n# comment\nSTOREFRONT_TEST_ONLY=\"quoted\"\n"), 0o644))

	require.NoError(t, loadFromFiles(jsonPath, envPath))
	t.Cleanup(func() { Reset(nil) })

	assert.Equal(t, "9100", get("APP_PORT", ""))
	assert.Equal(t, "quoted", get("STOREFRONT_TEST_ONLY", ""))
	assert.Equal(t, 30*time.Minute, duration("JWT_TTL", time.Hour))
	assert.Equal(t, "10", get("RATE_LIMIT", ""))
}

func TestLoadFromFilesIgnoresMissingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope.env")))
	t.Cleanup(func() { Reset(nil) })

	assert.Equal(t, defaultAppPort, get("APP_PORT", ""))
}

func TestResetAndTypedGetters(t *testing.T) {
	Reset(map[string]string{
		"DB_DRIVER":    "oracle",
		"JWT_TTL":      "120",
		"CACHE_DRIVER": "REDIS",
		"SESSION_TTL":  "garbage",
	})
	t.Cleanup(func() { Reset(nil) })

	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, defaultSQLiteDSN, DatabaseDSN())
	assert.Equal(t, 2*time.Minute, JWTTTL())
	assert.Equal(t, "redis", CacheDriver())
	assert.Equal(t, defaultSessionTTL, SessionTTL())
	assert.Equal(t, "Authorization", AuthCookie())
	assert.Equal(t, "fallback", Get("UNKNOWN_KEY", "fallback"))
}
