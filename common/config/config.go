package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/scriptgen-ra/scriptgen/common/env"
)

var (
	// SessionSecret signs both session cookies and issued JWT bearer tokens.
	// A random secret is generated when SESSION_SECRET is absent.
	SessionSecret = strings.TrimSpace(env.String("SESSION_SECRET", ""))

	// ServerPort overrides the --port flag when running inside container or PaaS environments.
	ServerPort = strings.TrimSpace(env.String("PORT", ""))
	// GinMode allows forcing Gin into release mode (or other modes) without recompiling.
	GinMode = strings.TrimSpace(env.String("GIN_MODE", ""))

	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)
	// DebugSQLEnabled toggles per-query SQL logging when DEBUG_SQL=true.
	DebugSQLEnabled = env.Bool("DEBUG_SQL", false)

	// CorsOrigin restricts browser clients; the bundled frontend runs on :3000 in development.
	CorsOrigin = env.String("CORS_ORIGIN", "http://localhost:3000")

	// TokenValidityHours bounds issued bearer tokens; the frontend re-authenticates after expiry.
	TokenValidityHours = env.Int("TOKEN_VALIDITY_HOURS", 7*24)

	// OnlyOneLogFile merges all rotated logs into a single file when true.
	OnlyOneLogFile = env.Bool("ONLY_ONE_LOG_FILE", false)

	// RedisConnString defines the Redis connection string; leaving it empty disables Redis features.
	RedisConnString = strings.TrimSpace(env.String("REDIS_CONN_STRING", ""))
	// RedisMasterName enables Redis sentinel/cluster discovery when provided.
	RedisMasterName = strings.TrimSpace(env.String("REDIS_MASTER_NAME", ""))
	// RedisPassword supplies the Redis authentication password when required.
	RedisPassword = env.String("REDIS_PASSWORD", "")

	// SQLDSN provides the primary database DSN; empty indicates that SQLite should be used.
	SQLDSN = strings.TrimSpace(env.String("SQL_DSN", ""))
	// SQLitePath specifies the SQLite database file path when SQL_DSN is absent.
	SQLitePath = env.String("SQLITE_PATH", "scriptgen.db")
	// SQLiteBusyTimeout configures SQLite busy timeout in milliseconds to mitigate locking errors.
	SQLiteBusyTimeout = env.Int("SQLITE_BUSY_TIMEOUT", 3000)

	// SQLMaxIdleConns controls the database pool's idle connection count.
	SQLMaxIdleConns = env.Int("SQL_MAX_IDLE_CONNS", 100)
	// SQLMaxOpenConns controls the database pool's maximum open connections.
	SQLMaxOpenConns = env.Int("SQL_MAX_OPEN_CONNS", 1000)
	// SQLMaxLifetimeSeconds sets how long database connections live before being recycled (seconds).
	SQLMaxLifetimeSeconds = env.Int("SQL_MAX_LIFETIME", 300)

	// GlobalApiRateLimitNum bounds the number of REST API requests per IP within a three minute window.
	GlobalApiRateLimitNum = env.Int("GLOBAL_API_RATE_LIMIT", 480)
	// GlobalApiRateLimitDuration sets the duration (seconds) of the API rate limit window.
	GlobalApiRateLimitDuration int64 = 3 * 60

	// CriticalRateLimitNum defines the burst control for auth and generation endpoints.
	CriticalRateLimitNum = env.Int("CRITICAL_RATE_LIMIT", 20)
	// CriticalRateLimitDuration sets the window (seconds) for critical rate limiting.
	CriticalRateLimitDuration int64 = 20 * 60

	// UploadRateLimitNum bounds the number of file uploads allowed per client within UploadRateLimitDuration.
	UploadRateLimitNum = 10
	// UploadRateLimitDuration sets the upload rate limit window (seconds).
	UploadRateLimitDuration int64 = 60

	// EnablePrometheusMetrics exposes the /metrics endpoint for Prometheus scrapers when true.
	EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", true)
)

// RateLimitKeyExpirationDuration controls how long Redis keys for rate limiting remain valid.
var RateLimitKeyExpirationDuration = 20 * time.Minute

// SystemName is displayed by the frontend and in status responses.
var SystemName = "ScriptGen RA"

func init() {
	if SessionSecret == "" {
		fmt.Println("SESSION_SECRET not set, using random secret")
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("failed to generate random secret: %v", err))
		}
		SessionSecret = base64.StdEncoding.EncodeToString(key)
	}
}

// Config carries everything the generation pipeline needs. It is built once
// in main via Load and passed by reference into components; the pipeline
// packages never read environment variables themselves, so tests can inject
// fake configs.
type Config struct {
	// Azure OpenAI completion service.
	AzureEndpoint  string
	DeploymentName string
	APIVersion     string
	APIKey         string

	// Directories for uploaded inputs and generated artifacts.
	UploadsDir string
	OutputDir  string

	// Optional pre-configured inputs enabling the "use defaults" mode.
	DefaultMethodPath string
	DefaultTestPath   string
	DefaultExcelPath  string

	// Default TestRail instance used when a request omits the base URL.
	TestRailBaseURL string
}

// Load reads the generation configuration from the environment and validates
// that the completion service settings are present. A missing required value
// is a startup-fatal condition: the caller is expected to abort rather than
// serve generation endpoints that can only fail.
func Load() (*Config, error) {
	cfg := &Config{
		AzureEndpoint:     strings.TrimSuffix(strings.TrimSpace(env.String("AZURE_OPENAI_ENDPOINT", "")), "/"),
		DeploymentName:    strings.TrimSpace(env.String("OPENAI_MODEL", "")),
		APIVersion:        strings.TrimSpace(env.String("OPENAI_API_VERSION", "")),
		APIKey:            strings.TrimSpace(env.String("OPENAI_API_KEY", "")),
		UploadsDir:        env.String("UPLOADS_DIR", "./uploads"),
		OutputDir:         env.String("OUTPUT_DIR", "./output"),
		DefaultMethodPath: env.String("DEFAULT_METHOD_PATH", ""),
		DefaultTestPath:   env.String("DEFAULT_TEST_PATH", ""),
		DefaultExcelPath:  env.String("DEFAULT_EXCEL_PATH", ""),
		TestRailBaseURL:   strings.TrimSuffix(strings.TrimSpace(env.String("TESTRAIL_URL", "")), "/"),
	}

	var missing []string
	for _, v := range []struct {
		name  string
		value string
	}{
		{"AZURE_OPENAI_ENDPOINT", cfg.AzureEndpoint},
		{"OPENAI_MODEL", cfg.DeploymentName},
		{"OPENAI_API_VERSION", cfg.APIVersion},
		{"OPENAI_API_KEY", cfg.APIKey},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// UseDefaultsSupported reports whether the "use defaults" request mode can be
// served for the given data source.
func (c *Config) UseDefaultsSupported(needExcel bool) bool {
	if c.DefaultMethodPath == "" || c.DefaultTestPath == "" {
		return false
	}
	if needExcel && c.DefaultExcelPath == "" {
		return false
	}
	return true
}
