package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "database", cfg.Snapshot.Store)
	assert.Equal(t, "state", cfg.Snapshot.Prefix)
	assert.Equal(t, 21.0285, cfg.Geocoding.CenterLat)
	assert.Equal(t, 105.8542, cfg.Geocoding.CenterLng)
	assert.False(t, cfg.Advisor.Enabled)
	assert.Contains(t, cfg.CORS.AllowedHeaders, "X-User-ID")
	assert.Equal(t, 30*time.Second, cfg.Advisor.TimeoutDuration())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("SNAPSHOT_STORE", "local")
	t.Setenv("ADVISOR_API_KEY", "key-from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Snapshot.Store)
	assert.Equal(t, "key-from-env", cfg.Advisor.APIKey)
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "crm", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=crm sslmode=disable", d.ConnectionString())
}

type stubSecrets map[string]string

func (s stubSecrets) GetSecretOrEnv(_ context.Context, secretName, _ string) (string, error) {
	if v, ok := s[secretName]; ok {
		return v, nil
	}
	return "", errors.New("missing")
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Host = "localhost"

	applySecrets(context.Background(), cfg, stubSecrets{
		"POSTGRES-MAIN-PASSWORD":    "pw",
		"storage-connection-string": "conn",
		"advisor-api-key":           "key",
	})

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "pw", cfg.Database.Password)
	assert.Equal(t, "conn", cfg.Storage.CloudConnectionString)
	assert.Equal(t, "key", cfg.Advisor.APIKey)
}
