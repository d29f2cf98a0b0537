// Package config loads the ledger's settings for one market deployment from
// config.toml, a .env file and LEDGER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LEDGER_DATABASE_PASSWORD.
const EnvPrefix = "LEDGER"

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Log         LogConfig         `mapstructure:"log"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Portal      PortalConfig      `mapstructure:"portal"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Printing    PrintingConfig    `mapstructure:"printing"`
	Storage     StorageConfig     `mapstructure:"storage"`
}

// AppConfig identifies the deployment. Each deployment serves one market
// and books every amount in that market's currency.
type AppConfig struct {
	Name         string `mapstructure:"name"`
	Env          string `mapstructure:"env"`
	Port         string `mapstructure:"port"`
	Country      string `mapstructure:"country"`
	Currency     string `mapstructure:"currency"`
	BusinessName string `mapstructure:"business_name"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	Issuer                 string        `mapstructure:"issuer"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
	PortalTokenExpiration  time.Duration `mapstructure:"portal_token_expiration"`
	MaxRefreshCount        int           `mapstructure:"max_refresh_count"`
}

// OperatorConfig is a back-office account. Only the bcrypt hash of the
// password is ever configured.
type OperatorConfig struct {
	Username     string `mapstructure:"username"`
	Name         string `mapstructure:"name"`
	PasswordHash string `mapstructure:"password_hash"`
	Admin        bool   `mapstructure:"admin"`
}

type AuthConfig struct {
	Operators []OperatorConfig `mapstructure:"operators"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	// Zero leaves Strict-Transport-Security off, for plain HTTP behind a
	// terminating proxy.
	HSTSMaxAge time.Duration `mapstructure:"hsts_max_age"`

	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	// The auth limiter guards login and the portal PIN exchange.
	AuthRateLimitEnabled  bool          `mapstructure:"auth_rate_limit_enabled"`
	AuthRateLimitRequests int           `mapstructure:"auth_rate_limit_requests"`
	AuthRateLimitWindow   time.Duration `mapstructure:"auth_rate_limit_window"`

	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string `mapstructure:"trusted_proxies"`
}

// PortalConfig throttles PIN attempts per vehicle.
type PortalConfig struct {
	PINAttemptsPerMinute float64 `mapstructure:"pin_attempts_per_minute"`
	PINBurst             int     `mapstructure:"pin_burst"`
}

type IdempotencyConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

type TelemetryConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"` // OTLP gRPC, host:port
	SamplingRatio     float64 `mapstructure:"sampling_ratio"`
	ServiceName       string  `mapstructure:"service_name"`
	ServiceVersion    string  `mapstructure:"service_version"`
	Insecure          bool    `mapstructure:"insecure"`
	MetricsEnabled    bool    `mapstructure:"metrics_enabled"`
	LogsEnabled       bool    `mapstructure:"logs_enabled"`

	DBTraceEnabled bool `mapstructure:"db_trace_enabled"`
	// DBLogFullSQL puts statements with their values on spans. Never in
	// production.
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`

	ProfilingEnabled  bool   `mapstructure:"profiling_enabled"`
	PyroscopeEndpoint string `mapstructure:"pyroscope_endpoint"`
}

// PrintingConfig drives receipt PDF rendering through headless Chrome.
type PrintingConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	RemoteURL string        `mapstructure:"remote_url"` // DevTools websocket; empty starts a local Chrome
	Timeout   time.Duration `mapstructure:"timeout"`
	PaperSize string        `mapstructure:"paper_size"`
}

// StorageConfig is the S3-compatible archive for receipts and exports.
type StorageConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	Bucket          string        `mapstructure:"bucket"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UsePathStyle    bool          `mapstructure:"use_path_style"`
	PresignTTL      time.Duration `mapstructure:"presign_ttl"`
}

// defaults registers every key with viper. A key viper does not know is
// never read from the environment, so secrets get an empty default too.
var defaults = map[string]any{
	"app.name":          "ledger-backend",
	"app.env":           "development",
	"app.port":          "8080",
	"app.country":       string(valueobject.Nigeria),
	"app.currency":      "",
	"app.business_name": "Sahel Build Materials",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "ledger",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                   "",
	"jwt.refresh_secret":           "",
	"jwt.issuer":                   "ledger-backend",
	"jwt.access_token_expiration":  15 * time.Minute,
	"jwt.refresh_token_expiration": 7 * 24 * time.Hour,
	"jwt.portal_token_expiration":  12 * time.Hour,
	"jwt.max_refresh_count":        10,

	"auth.admin_username":      "",
	"auth.admin_name":          "",
	"auth.admin_password_hash": "",

	"http.read_timeout":             15 * time.Second,
	"http.write_timeout":            30 * time.Second,
	"http.idle_timeout":             60 * time.Second,
	"http.shutdown_timeout":         30 * time.Second,
	"http.max_header_bytes":         1 << 20,
	"http.max_body_size":            2 << 20,
	"http.request_timeout":          25 * time.Second,
	"http.hsts_max_age":             time.Duration(0),
	"http.rate_limit_enabled":       false,
	"http.rate_limit_requests":      100,
	"http.rate_limit_window":        time.Minute,
	"http.auth_rate_limit_enabled":  false,
	"http.auth_rate_limit_requests": 5,
	"http.auth_rate_limit_window":   time.Minute,
	"http.cors_allow_origins":       []string{},
	"http.cors_allow_methods":       []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"http.cors_allow_headers":       []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"},
	"http.trusted_proxies":          []string{},

	"portal.pin_attempts_per_minute": 3.0,
	"portal.pin_burst":               5,

	"idempotency.enabled":    false,
	"idempotency.ttl":        24 * time.Hour,
	"idempotency.key_prefix": "ledger:idempotency:",

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "ledger-backend",
	"telemetry.service_version":         "1.0.0",
	"telemetry.insecure":                false,
	"telemetry.metrics_enabled":         false,
	"telemetry.logs_enabled":            false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
	"telemetry.profiling_enabled":       false,
	"telemetry.pyroscope_endpoint":      "http://localhost:4040",

	"printing.enabled":    false,
	"printing.remote_url": "",
	"printing.timeout":    30 * time.Second,
	"printing.paper_size": "RECEIPT_80MM",

	"storage.enabled":           false,
	"storage.endpoint":          "",
	"storage.region":            "us-east-1",
	"storage.bucket":            "",
	"storage.access_key_id":     "",
	"storage.secret_access_key": "",
	"storage.use_path_style":    false,
	"storage.presign_ttl":       15 * time.Minute,
}

// Load reads, in rising priority: built-in defaults, config.toml from ".",
// "./config" or "/app", then LEDGER_* variables. A .env file in the working
// directory is loaded into the environment first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// A bootstrap admin can come from the environment alone.
	if username := v.GetString("auth.admin_username"); username != "" {
		cfg.Auth.Operators = append(cfg.Auth.Operators, OperatorConfig{
			Username:     username,
			Name:         v.GetString("auth.admin_name"),
			PasswordHash: v.GetString("auth.admin_password_hash"),
			Admin:        true,
		})
	}

	cfg.App.Country = strings.ToUpper(cfg.App.Country)
	cfg.App.Currency = strings.ToUpper(cfg.App.Currency)
	if cfg.App.Currency == "" {
		cfg.App.Currency = string(valueobject.Country(cfg.App.Country).Currency())
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Database.validatePool(); err != nil {
		return err
	}

	for i, op := range c.Auth.Operators {
		if op.Username == "" || op.PasswordHash == "" {
			return fmt.Errorf("auth.operators[%d] needs a username and a password_hash", i)
		}
	}
	if c.Portal.PINAttemptsPerMinute < 0 || c.Portal.PINBurst < 0 {
		return errors.New("portal PIN throttling values cannot be negative")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required when storage is enabled")
	}
	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %g", r)
	}

	if c.App.IsProduction() {
		return c.validateProduction()
	}
	return nil
}

func (a *AppConfig) validate() error {
	country, err := valueobject.ParseCountry(a.Country)
	if err != nil {
		return fmt.Errorf("app.country: %w", err)
	}
	currency := valueobject.Currency(a.Currency)
	if !currency.IsValid() {
		return fmt.Errorf("app.currency must be NGN or XAF, got %q", a.Currency)
	}
	if currency != country.Currency() {
		return fmt.Errorf("app.currency %s does not match %s (%s)", currency, country.Name(), country.Currency())
	}
	return nil
}

func (d *DatabaseConfig) validatePool() error {
	switch {
	case d.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case d.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case d.MaxIdleConns > d.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			d.MaxIdleConns, d.MaxOpenConns)
	}
	return nil
}

// validateProduction refuses settings that are tolerable on a laptop but
// leak data or accept forged tokens in a market deployment.
func (c *Config) validateProduction() error {
	switch {
	case c.JWT.Secret == "":
		return errors.New("jwt.secret is required in production")
	case len(c.JWT.Secret) < 32:
		return errors.New("jwt.secret must be at least 32 characters in production")
	case c.Database.Password == "":
		return errors.New("database.password is required in production")
	case c.Database.SSLMode == "disable":
		return errors.New("database.sslmode cannot be 'disable' in production")
	case len(c.Auth.Operators) == 0:
		return errors.New("at least one auth.operators entry is required in production")
	case slices.Contains(c.HTTP.CORSAllowOrigins, "*"):
		return errors.New("http.cors_allow_origins cannot be '*' in production")
	case c.Telemetry.DBLogFullSQL:
		return errors.New("telemetry.db_log_full_sql must be false in production")
	}
	return nil
}

func (a *AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// MarketCountry is the market this deployment serves.
func (a *AppConfig) MarketCountry() valueobject.Country {
	return valueobject.Country(a.Country)
}

// DSN is a postgres URL with user and password escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

func (r *RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}
