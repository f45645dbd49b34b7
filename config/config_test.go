package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "5000", c.AppPort)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, "memory", c.StoreDriver)
	assert.True(t, c.StoreSeed)
	assert.False(t, c.StoreValidateReferences)
	assert.False(t, c.AuthRequired)
	assert.Equal(t, 30, c.AITimeoutSeconds)
	assert.Equal(t, "gpt-4o", c.OpenAIModel)
	assert.Equal(t, 3600, c.CacheTTLSeconds)
}

func TestParseJSONSections(t *testing.T) {
	path := writeConfig(t, `{
		"app": {"AppPort": "8080", "AllowedOrigins": ["https://fam.example"], "RateLimitPerMinute": 60},
		"store": {"Driver": "mysql", "ValidateReferences": true, "Seed": false},
		"database": {"DBHost": "db", "DBName": "fit"},
		"redis": {"Enabled": true, "RedisPort": 6380},
		"ai": {"Model": "gpt-4o-mini", "TimeoutSeconds": 10},
		"auth": {"Required": true, "TokenLifetimeHours": 2}
	}`)

	c, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, []string{"https://fam.example"}, c.AllowedOrigins)
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Equal(t, "mysql", c.StoreDriver)
	assert.True(t, c.StoreValidateReferences)
	assert.False(t, c.StoreSeed)
	assert.Equal(t, "db", c.DBHost)
	assert.Equal(t, "3306", c.DBPort)
	assert.True(t, c.RedisEnabled)
	assert.Equal(t, 6380, c.RedisPort)
	assert.Equal(t, "gpt-4o-mini", c.OpenAIModel)
	assert.Equal(t, 10, c.AITimeoutSeconds)
	assert.True(t, c.AuthRequired)
	assert.Equal(t, 2, c.TokenLifetimeHours)
}

func TestParseEnvOverrides(t *testing.T) {
	path := writeConfig(t, `{"app": {"AppPort": "8080"}}`)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("STORE_VALIDATE_REFERENCES", "true")
	t.Setenv("STORE_SEED", "0")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("AI_TIMEOUT_SECONDS", "5")

	c, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", c.AppPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.True(t, c.StoreValidateReferences)
	assert.False(t, c.StoreSeed)
	assert.Equal(t, "sk-env", c.OpenAIAPIKey)
	assert.Equal(t, 5, c.AITimeoutSeconds)
}

func TestParseErrors(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		_, err := Parse(writeConfig(t, `{"app": `))
		assert.Error(t, err)
	})

	t.Run("invalid integer in environment", func(t *testing.T) {
		t.Setenv("REDIS_PORT", "not-a-number")
		_, err := Parse(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_PORT")
	})
}

func TestDSN(t *testing.T) {
	c := AppConfig{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "1", DBName: "n"}
	assert.Equal(t, "u:p@tcp(h:1)/n?charset=utf8mb4&parseTime=True&loc=Local", c.DSN())

	c.DatabaseURI = "custom"
	assert.Equal(t, "custom", c.DSN())
}

func TestToGormLogLevel(t *testing.T) {
	assert.NotEqual(t, toGormLogLevel("debug"), toGormLogLevel("info"))
	assert.Equal(t, toGormLogLevel("warn"), toGormLogLevel("unknown"))
}
