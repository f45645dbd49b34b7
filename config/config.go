package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Secrets (API keys, JWT secret, DB password) should come from the environment, not from committed files.
type AppConfig struct {
	AppPort               string
	AllowedOrigins        []string
	RateLimitPerMinute    int
	AIRateLimitPerMinute  int
	ShutdownTimeoutSecond int
	// Gin framework configuration
	GinMode string
	GinPath string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Store selection: "memory" or "mysql"
	StoreDriver             string
	StoreValidateReferences bool
	StoreSeed               bool
	// MySQL for the gorm store
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis for caching AI recommendations
	RedisEnabled    bool
	RedisHost       string
	RedisPort       int
	RedisDB         int
	RedisPassword   string
	CacheTTLSeconds int
	// Completion API
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	AITimeoutSeconds int
	// Auth
	AuthRequired       bool
	JWTSecret          string
	TokenLifetimeHours int
	SeedPassword       string
}

var cfg AppConfig
var loaded bool

// Load reads config/config.json, applies defaults and environment overrides.
// The result is cached for the lifetime of the process.
func Load() AppConfig {
	if loaded {
		return cfg
	}
	c, err := Parse(filepath.Join("config", "config.json"))
	if err != nil {
		log.Fatalf("invalid config file: %v", err)
	}
	cfg = c
	loaded = true
	return cfg
}

// Parse builds a configuration with precedence: JSON file -> defaults -> environment.
// A missing file is not an error.
func Parse(path string) (AppConfig, error) {
	c := AppConfig{StoreSeed: true}
	if err := loadJSONConfig(path, &c); err != nil {
		return AppConfig{}, err
	}
	applyDefaults(&c)
	if err := applyEnvOverrides(&c); err != nil {
		return AppConfig{}, err
	}
	return c, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads grouped sections from the JSON file into out. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		switch t := m[key].(type) {
		case float64:
			return int(t)
		case int:
			return t
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		b, _ := m[key].(bool)
		return b
	}
	getStringSlice := func(m map[string]any, key string) []string {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.AllowedOrigins = getStringSlice(app, "AllowedOrigins")
		out.RateLimitPerMinute = getInt(app, "RateLimitPerMinute")
		out.AIRateLimitPerMinute = getInt(app, "AIRateLimitPerMinute")
		out.ShutdownTimeoutSecond = getInt(app, "ShutdownTimeoutSeconds")
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		out.GinMode = getString(g, "Mode")
		out.GinPath = getString(g, "LogPath")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}

	if st, ok := raw["store"].(map[string]any); ok {
		out.StoreDriver = getString(st, "Driver")
		out.StoreValidateReferences = getBool(st, "ValidateReferences")
		if b, ok := st["Seed"].(bool); ok {
			out.StoreSeed = b
		}
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisEnabled = getBool(rds, "Enabled")
		out.RedisHost = getString(rds, "RedisHost")
		out.RedisPort = getInt(rds, "RedisPort")
		out.RedisDB = getInt(rds, "RedisDB")
		out.RedisPassword = getString(rds, "RedisPassword")
		out.CacheTTLSeconds = getInt(rds, "CacheTTLSeconds")
	}

	if a, ok := raw["ai"].(map[string]any); ok {
		out.OpenAIAPIKey = getString(a, "APIKey")
		out.OpenAIBaseURL = getString(a, "BaseURL")
		out.OpenAIModel = getString(a, "Model")
		out.AITimeoutSeconds = getInt(a, "TimeoutSeconds")
	}

	if au, ok := raw["auth"].(map[string]any); ok {
		out.AuthRequired = getBool(au, "Required")
		out.JWTSecret = getString(au, "JWTSecret")
		out.TokenLifetimeHours = getInt(au, "TokenLifetimeHours")
		out.SeedPassword = getString(au, "SeedPassword")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "5000"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 120
	}
	if c.AIRateLimitPerMinute == 0 {
		c.AIRateLimitPerMinute = 20
	}
	if c.ShutdownTimeoutSecond == 0 {
		c.ShutdownTimeoutSecond = 30
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.StoreDriver == "" {
		c.StoreDriver = "memory"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "famfit"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = 3600
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = "gpt-4o"
	}
	if c.AITimeoutSeconds == 0 {
		c.AITimeoutSeconds = 30
	}
	if c.TokenLifetimeHours == 0 {
		c.TokenLifetimeHours = 72
	}
	if c.SeedPassword == "" {
		c.SeedPassword = "password"
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	var firstErr error
	atoi := func(key string, dst *int) {
		v := getEnv(key, "")
		if v == "" {
			return
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			if firstErr == nil {
				firstErr = &envError{key: key, value: v, err: err}
			}
			return
		}
		*dst = i
	}
	str := func(key string, dst *string) {
		if v := getEnv(key, ""); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v := getEnv(key, ""); v != "" {
			*dst = strings.EqualFold(v, "true") || v == "1"
		}
	}

	str("APP_PORT", &c.AppPort)
	str("PORT", &c.AppPort)
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	atoi("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	atoi("AI_RATE_LIMIT_PER_MINUTE", &c.AIRateLimitPerMinute)
	atoi("SHUTDOWN_TIMEOUT_SECONDS", &c.ShutdownTimeoutSecond)

	str("GIN_MODE", &c.GinMode)
	str("GIN_PATH", &c.GinPath)

	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_PATH", &c.LogPath)
	atoi("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	atoi("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	atoi("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	boolean("LOG_COMPRESS", &c.LogCompress)

	str("STORE_DRIVER", &c.StoreDriver)
	boolean("STORE_VALIDATE_REFERENCES", &c.StoreValidateReferences)
	boolean("STORE_SEED", &c.StoreSeed)

	str("DATABASE_URI", &c.DatabaseURI)
	str("DB_HOST", &c.DBHost)
	str("DB_PORT", &c.DBPort)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_NAME", &c.DBName)

	boolean("REDIS_ENABLED", &c.RedisEnabled)
	str("REDIS_HOST", &c.RedisHost)
	atoi("REDIS_PORT", &c.RedisPort)
	atoi("REDIS_DB", &c.RedisDB)
	str("REDIS_PASSWORD", &c.RedisPassword)
	atoi("CACHE_TTL_SECONDS", &c.CacheTTLSeconds)

	str("OPENAI_API_KEY", &c.OpenAIAPIKey)
	str("OPENAI_BASE_URL", &c.OpenAIBaseURL)
	str("OPENAI_MODEL", &c.OpenAIModel)
	atoi("AI_TIMEOUT_SECONDS", &c.AITimeoutSeconds)

	boolean("AUTH_REQUIRED", &c.AuthRequired)
	str("JWT_SECRET", &c.JWTSecret)
	atoi("TOKEN_LIFETIME_HOURS", &c.TokenLifetimeHours)
	str("SEED_PASSWORD", &c.SeedPassword)

	return firstErr
}

type envError struct {
	key   string
	value string
	err   error
}

func (e *envError) Error() string {
	return "invalid integer value " + strconv.Quote(e.value) + " for " + e.key + ": " + e.err.Error()
}

func (e *envError) Unwrap() error { return e.err }

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
