package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// HTTP server and public URLs
	App AppConfig `mapstructure:"app"`

	// PostgreSQL
	Postgres PostgresConfig `mapstructure:"postgres"`

	// Redis
	Redis RedisConfig `mapstructure:"redis"`

	// NATS
	NATS NATSConfig `mapstructure:"nats"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`

	// Geolocation providers
	Geo GeoConfig `mapstructure:"geo"`

	// Owner API authentication
	Auth AuthConfig `mapstructure:"auth"`
}

type AppConfig struct {
	Port int `mapstructure:"port"`
	// PublicBaseURL prefixes every indirection URL, e.g. https://qr.example.com.
	PublicBaseURL string `mapstructure:"public_base_url"`
	// RateLimit caps requests per client IP per minute on the public routes.
	RateLimit int `mapstructure:"rate_limit"`
	// CounterReconcileInterval controls how often scan counters are rebuilt from Postgres.
	CounterReconcileInterval time.Duration `mapstructure:"counter_reconcile_interval"`
	// TrustedProxies lists proxy addresses allowed to set X-Forwarded-For.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	Port              int    `mapstructure:"port"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   string `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   string `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod string `mapstructure:"health_check_period"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	MonitorPort int    `mapstructure:"monitor_port"`
	// PublishTimeout bounds a single scan notification publish.
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type PrometheusConfig struct {
	Port int `mapstructure:"port"`
}

type GeoConfig struct {
	// Endpoint is an ipapi.co compatible JSON API. Empty disables the HTTP provider.
	Endpoint  string        `mapstructure:"endpoint"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// MMDBPath points at a GeoLite2-City database. Empty disables the MaxMind provider.
	MMDBPath string        `mapstructure:"mmdb_path"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

func Load() (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Preserve legacy env variable names.
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.App.PublicBaseURL = strings.TrimRight(cfg.App.PublicBaseURL, "/")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.public_base_url", "http://localhost:8080")
	v.SetDefault("app.rate_limit", 120)
	v.SetDefault("app.counter_reconcile_interval", 5*time.Minute)

	v.SetDefault("nats.publish_timeout", 2*time.Second)

	v.SetDefault("prometheus.port", 9090)

	v.SetDefault("geo.endpoint", "https://ipapi.co")
	v.SetDefault("geo.user_agent", "powerqr-scan-tracker/1.0")
	v.SetDefault("geo.timeout", 500*time.Millisecond)
	v.SetDefault("geo.cache_ttl", 24*time.Hour)
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.public_base_url", "APP_PUBLIC_BASE_URL")
	v.BindEnv("app.rate_limit", "APP_RATE_LIMIT")
	v.BindEnv("app.counter_reconcile_interval", "APP_COUNTER_RECONCILE_INTERVAL")
	v.BindEnv("app.trusted_proxies", "APP_TRUSTED_PROXIES")

	// PostgreSQL
	v.BindEnv("postgres.host", "PG_HOST")
	v.BindEnv("postgres.user", "PG_USER")
	v.BindEnv("postgres.password", "PG_PASSWORD")
	v.BindEnv("postgres.database", "PG_DB")
	v.BindEnv("postgres.port", "PG_PORT")
	v.BindEnv("postgres.sslmode", "PG_SSLMODE")
	v.BindEnv("postgres.max_conns", "PG_MAX_CONNS")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// NATS
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")
	v.BindEnv("nats.monitor_port", "NATS_MONITOR_PORT")
	v.BindEnv("nats.publish_timeout", "NATS_PUBLISH_TIMEOUT")

	// Prometheus
	v.BindEnv("prometheus.port", "PROM_PORT")

	// Geolocation
	v.BindEnv("geo.endpoint", "GEO_ENDPOINT")
	v.BindEnv("geo.user_agent", "GEO_USER_AGENT")
	v.BindEnv("geo.timeout", "GEO_TIMEOUT")
	v.BindEnv("geo.mmdb_path", "GEO_MMDB_PATH")
	v.BindEnv("geo.cache_ttl", "GEO_CACHE_TTL")

	// Auth
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.issuer", "JWT_ISSUER")
}
