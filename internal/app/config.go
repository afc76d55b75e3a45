package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration of the CMS backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Email       EmailConfig       `mapstructure:"email"`
	Storage     StorageConfig     `mapstructure:"storage"`
	CORS        CORSConfig        `mapstructure:"cors"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	Environment string `mapstructure:"environment"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

// IsProduction reports whether the server runs with production semantics (secure cookies).
func (s ServerConfig) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(s.Environment)) {
	case "production", "prod":
		return true
	}
	return false
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
	Pool     DBPoolConfig `mapstructure:"pool"`

	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`
}

// DBPoolConfig tunes the sql.DB connection pool. Zero values keep driver defaults.
type DBPoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Options  string `mapstructure:"options"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	URL      string        `mapstructure:"url"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AuthConfig captures both session realms and the OTP flow.
type AuthConfig struct {
	Issuer         string         `mapstructure:"issuer"`
	User           RealmSettings  `mapstructure:"user"`
	Admin          RealmSettings  `mapstructure:"admin"`
	Cookie         CookieSettings `mapstructure:"cookie"`
	OTP            OTPSettings    `mapstructure:"otp"`
	BootstrapAdmin BootstrapAdmin `mapstructure:"bootstrap_admin"`
}

// RealmSettings configures one session realm.
type RealmSettings struct {
	Secret     string        `mapstructure:"secret"`
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
}

// CookieSettings control how session cookies are written.
type CookieSettings struct {
	HTTPOnly bool   `mapstructure:"http_only"`
	SameSite string `mapstructure:"same_site"`
	Domain   string `mapstructure:"domain"`
	Path     string `mapstructure:"path"`
}

// OTPSettings configure email verification codes.
type OTPSettings struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// BootstrapAdmin is seeded at startup when no admin with that email exists.
type BootstrapAdmin struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	Provider string         `mapstructure:"provider"`
	From     string         `mapstructure:"from"`
	FromName string         `mapstructure:"from_name"`
	Timeout  time.Duration  `mapstructure:"timeout"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SendGrid SendGridConfig `mapstructure:"sendgrid"`
}

// SMTPConfig defines SMTP dialer settings.
type SMTPConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	UseTLS             bool   `mapstructure:"use_tls"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// SendGridConfig defines SendGrid API settings.
type SendGridConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Sandbox bool   `mapstructure:"sandbox"`
}

// StorageConfig selects the object storage driver.
type StorageConfig struct {
	Driver  string             `mapstructure:"driver"`
	Timeout time.Duration      `mapstructure:"timeout"`
	Local   LocalStorageConfig `mapstructure:"local"`
	S3      S3StorageConfig    `mapstructure:"s3"`
}

// LocalStorageConfig configures disk storage served under PublicURL.
type LocalStorageConfig struct {
	Root      string `mapstructure:"root"`
	PublicURL string `mapstructure:"public_url"`
}

// S3StorageConfig configures an S3 compatible bucket.
type S3StorageConfig struct {
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	PublicURL    string `mapstructure:"public_url"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// CORSConfig configures cross-origin access for the browser front-end.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// RateLimitConfig configures the general and authentication request limits.
type RateLimitConfig struct {
	Requests     int           `mapstructure:"requests"`
	Window       time.Duration `mapstructure:"window"`
	AuthRequests int           `mapstructure:"auth_requests"`
	AuthWindow   time.Duration `mapstructure:"auth_window"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health"`
}

// HealthConfig bounds each dependency probe.
type HealthConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// MaintenanceConfig holds cron specifications for background cleanup.
type MaintenanceConfig struct {
	OTPCleanup   string `mapstructure:"otp_cleanup"`
	CacheCleanup string `mapstructure:"cache_cleanup"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("SITECMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 25)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/sitecms.sqlite")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.slow_query_threshold", 500*time.Millisecond)

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("auth.issuer", "sitecms")
	v.SetDefault("auth.user.ttl", "24h")
	v.SetDefault("auth.user.cookie_name", "token")
	v.SetDefault("auth.admin.ttl", "24h")
	v.SetDefault("auth.admin.cookie_name", "adminToken")
	v.SetDefault("auth.cookie.http_only", true)
	v.SetDefault("auth.cookie.same_site", "none")
	v.SetDefault("auth.cookie.path", "/")
	v.SetDefault("auth.otp.ttl", "5m")

	v.SetDefault("email.provider", "none")
	v.SetDefault("email.timeout", "10s")
	v.SetDefault("email.smtp.port", 587)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.timeout", "30s")
	v.SetDefault("storage.local.root", "./public")
	v.SetDefault("storage.local.public_url", "/static")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("cors.allow_credentials", true)

	v.SetDefault("ratelimit.requests", 300)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("ratelimit.auth_requests", 10)
	v.SetDefault("ratelimit.auth_window", "1m")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health.timeout", 2*time.Second)

	v.SetDefault("maintenance.otp_cleanup", "@every 15m")
	v.SetDefault("maintenance.cache_cleanup", "@hourly")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
