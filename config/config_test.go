package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "jwt:\n  secret: s3cret\nserver:\n  port: 8080\n"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Second, cfg.Algorithm.GenerateTimeout)
	assert.Equal(t, 10*time.Second, cfg.Algorithm.ImageTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "jwt:\n  secret: from-file\n"))
	t.Setenv("POSTER_JWT_SECRET", "from-env")
	t.Setenv("POSTER_ALGORITHM_URL", "http://algo:9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "http://algo:9000", cfg.Algorithm.URL)
}

func TestLoad_MissingSecretFails(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "server:\n  port: 8080\n"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable", ConnectTimeout: 2 * time.Second}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable connect_timeout=2", d.DSN())

	d = DatabaseConfig{Driver: "sqlite", Path: "local.db"}
	assert.Equal(t, "local.db", d.DSN())
}
