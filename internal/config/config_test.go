package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "cardtycoon", cfg.DBName)
	assert.Equal(t, 300, cfg.TradeTimeoutSeconds)
	assert.False(t, cfg.SeasonalActive)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SEASONAL_ACTIVE", "true")
	t.Setenv("TRADE_TIMEOUT_SECONDS", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.True(t, cfg.SeasonalActive)
	assert.Equal(t, 60, cfg.TradeTimeoutSeconds)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("TRADE_TIMEOUT_SECONDS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetDBConnString(t *testing.T) {
	cfg := &Config{
		DBUser:     "app",
		DBPassword: "secret",
		DBHost:     "db",
		DBPort:     "5433",
		DBName:     "tycoon",
	}

	assert.Equal(t, "postgres://app:secret@db:5433/tycoon?sslmode=disable", cfg.GetDBConnString())
}

func TestValidate(t *testing.T) {
	valid := &Config{
		DBUser: "u", DBHost: "h", DBPort: "5432", DBName: "d",
		CatalogPath: "configs/catalog.json", TradeTimeoutSeconds: 300,
	}
	assert.NoError(t, valid.Validate())

	missing := *valid
	missing.DBName = ""
	assert.Error(t, missing.Validate())

	noCatalog := *valid
	noCatalog.CatalogPath = ""
	assert.Error(t, noCatalog.Validate())
}
