package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable (SKILLSHARE_DATABASE_URL, ...).
const EnvPrefix = "SKILLSHARE"

// MinJWTSecretLength mirrors the minimum HS256 key size accepted by the token codec.
const MinJWTSecretLength = 32

// Visibility selects who may read posts, feeds and learning progress.
type Visibility string

const (
	// VisibilityOwnerScoped restricts reads to the owning identity.
	VisibilityOwnerScoped Visibility = "owner-scoped"
	// VisibilityPublic lets anyone (even anonymous callers) read content.
	VisibilityPublic Visibility = "public"
)

// ParseVisibility validates a configured visibility value.
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case VisibilityOwnerScoped, VisibilityPublic:
		return v, nil
	case "":
		return "", fmt.Errorf("%s_CONTENT_VISIBILITY is required (owner-scoped or public)", EnvPrefix)
	default:
		return "", fmt.Errorf("invalid %s_CONTENT_VISIBILITY %q: must be owner-scoped or public", EnvPrefix, s)
	}
}

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN). postgres:// selects PostgreSQL, anything else SQLite.
	DatabaseURL string `mapstructure:"database_url"`

	// Server bind address (host:port)
	ServerAddr string `mapstructure:"server_addr"`

	// Public base URL, used when building absolute upload urls
	ServerURL string `mapstructure:"server_url"`

	// Maximum database connection pool size
	MaxDBConnections int `mapstructure:"max_db_connections"`

	// Enable debug logging
	Debug bool `mapstructure:"debug"`

	// HMAC secret for access tokens
	JWTSecret string `mapstructure:"jwt_secret"`

	// Access token lifetime
	TokenTTL time.Duration `mapstructure:"token_ttl"`

	ContentVisibility Visibility `mapstructure:"content_visibility"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	Storage StorageConfig `mapstructure:"storage"`

	// Lifetime of a password reset token
	PasswordResetTTL time.Duration `mapstructure:"password_reset_ttl"`

	LoginRateLimit RateLimitConfig `mapstructure:"login_rate_limit"`

	Observability ObservabilityConfig `mapstructure:"observability"`
}

// StorageConfig selects and configures the blob store for uploaded media.
type StorageConfig struct {
	Backend     string `mapstructure:"backend"` // "local" or "s3"
	UploadDir   string `mapstructure:"upload_dir"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	S3Endpoint  string `mapstructure:"s3_endpoint"`   // optional, for MinIO and friends
	S3PublicURL string `mapstructure:"s3_public_url"` // base url objects are served from
	S3AccessKey string `mapstructure:"s3_access_key"` // optional static credentials
	S3SecretKey string `mapstructure:"s3_secret_key"`
}

// RateLimitConfig bounds attempts per client within a window.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ObservabilityConfig configures OpenTelemetry export. Empty endpoint disables it.
type ObservabilityConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"` // host:port of an OTLP/HTTP collector
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	ServiceName  string `mapstructure:"service_name"`
	Environment  string `mapstructure:"environment"`
}

// Storage backends.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// keys lists every configuration key. Nested keys are listed explicitly so that
// AutomaticEnv can resolve them during Unmarshal.
var keys = []string{
	"database_url",
	"server_addr",
	"server_url",
	"max_db_connections",
	"debug",
	"jwt_secret",
	"token_ttl",
	"content_visibility",
	"cors_allowed_origins",
	"storage.backend",
	"storage.upload_dir",
	"storage.s3_bucket",
	"storage.s3_region",
	"storage.s3_endpoint",
	"storage.s3_public_url",
	"storage.s3_access_key",
	"storage.s3_secret_key",
	"password_reset_ttl",
	"login_rate_limit.requests",
	"login_rate_limit.window",
	"observability.otlp_endpoint",
	"observability.otlp_insecure",
	"observability.service_name",
	"observability.environment",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "file:skillshare.db?cache=shared")
	v.SetDefault("server_addr", "localhost:8080")
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("max_db_connections", 25)
	v.SetDefault("debug", false)
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("cors_allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("storage.backend", StorageBackendLocal)
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("password_reset_ttl", time.Hour)
	v.SetDefault("login_rate_limit.requests", 10)
	v.SetDefault("login_rate_limit.window", time.Minute)
	v.SetDefault("observability.service_name", "skillapi")
	v.SetDefault("observability.environment", "development")
}

// Load reads configuration from the global viper instance: defaults, then the
// config file (if one was read), then SKILLSHARE_ prefixed environment variables.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load for an explicit viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not populate nested keys during Unmarshal.
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := &Config{}
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		visibilityHook(),
	)
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func visibilityHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(Visibility("")) || from.Kind() != reflect.String {
			return data, nil
		}
		return Visibility(strings.ToLower(strings.TrimSpace(data.(string)))), nil
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s_DATABASE_URL is required", EnvPrefix)
	}
	if c.ServerURL == "" {
		return fmt.Errorf("%s_SERVER_URL is required", EnvPrefix)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%s_JWT_SECRET is required", EnvPrefix)
	}
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("%s_JWT_SECRET must be at least %d bytes", EnvPrefix, MinJWTSecretLength)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%s_TOKEN_TTL must be positive", EnvPrefix)
	}
	if _, err := ParseVisibility(string(c.ContentVisibility)); err != nil {
		return err
	}
	if c.PasswordResetTTL <= 0 {
		return fmt.Errorf("%s_PASSWORD_RESET_TTL must be positive", EnvPrefix)
	}
	if c.LoginRateLimit.Requests < 0 || (c.LoginRateLimit.Requests > 0 && c.LoginRateLimit.Window <= 0) {
		return fmt.Errorf("%s_LOGIN_RATE_LIMIT requires a positive window", EnvPrefix)
	}

	switch c.Storage.Backend {
	case StorageBackendLocal:
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("%s_STORAGE_UPLOAD_DIR is required for local storage", EnvPrefix)
		}
	case StorageBackendS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("%s_STORAGE_S3_BUCKET is required for s3 storage", EnvPrefix)
		}
		if c.Storage.S3PublicURL == "" {
			return fmt.Errorf("%s_STORAGE_S3_PUBLIC_URL is required for s3 storage", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown %s_STORAGE_BACKEND %q", EnvPrefix, c.Storage.Backend)
	}
	return nil
}

// PublicContent reports whether content is readable without ownership.
func (c *Config) PublicContent() bool {
	return c.ContentVisibility == VisibilityPublic
}
