package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	WorldOffice WorldOfficeConfig
	Auco        AucoConfig
	Membership  MembershipConfig
	WhatsApp    WhatsAppConfig
	ClickUp     ClickUpConfig
	Storage     StorageConfig
	Render      RenderConfig
	Agreement   AgreementConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string // development, production
	Port string
}

// IsProduction reports whether the app runs in production mode. It drives
// browser provisioning (bundled binary vs. locally installed) and validation.
func (a *AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxBodySize      int64
	CORSAllowOrigins []string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

// RedisConfig holds Redis connection settings. Redis backs the agreement
// idempotency store; when disabled an in-memory store is used instead.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// WorldOfficeConfig holds the accounting/invoicing vendor settings
type WorldOfficeConfig struct {
	BaseURL        string
	Token          string
	TimeoutSeconds int
	// DefaultCityID is the hard-coded fallback when a city lookup misses.
	DefaultCityID int
	CityCacheTTL  time.Duration
}

// AucoConfig holds the e-signature vendor settings
type AucoConfig struct {
	BaseURL        string
	APIKey         string
	SenderEmail    string
	TimeoutSeconds int
}

// MembershipConfig holds the internal membership/sales API settings
type MembershipConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// WhatsAppConfig holds the messaging vendor settings
type WhatsAppConfig struct {
	BaseURL        string
	Token          string
	PhoneNumberID  string
	BlockTemplate  string // template name sent when a member is blocked
	TimeoutSeconds int
}

// ClickUpConfig holds the support-ticket vendor settings
type ClickUpConfig struct {
	BaseURL        string
	Token          string
	ListID         string
	TimeoutSeconds int
}

// StorageConfig holds S3-compatible object storage settings for the
// generated-PDF archive. Disabled means PDFs are not archived.
type StorageConfig struct {
	Enabled      bool
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
	KeyPrefix    string
}

// RenderConfig holds HTML-to-PDF rendering settings
type RenderConfig struct {
	// ChromePath is the browser executable. Empty in development (chromedp
	// finds the locally installed browser); in production it points at the
	// statically bundled binary and is usually set via FR_RENDER_CHROMEPATH.
	ChromePath string
	Timeout    time.Duration
	NoSandbox  bool
}

// AgreementConfig holds agreement-document generation settings
type AgreementConfig struct {
	TemplateSlug   string
	LogoPath       string
	CompanyName    string
	CompanyTaxID   string
	CompanyContact string
	IdempotencyTTL time.Duration
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with FR_ prefix (e.g., FR_AUCO_APIKEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("FR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		WorldOffice: WorldOfficeConfig{
			BaseURL:        v.GetString("worldoffice.base_url"),
			Token:          v.GetString("worldoffice.token"),
			TimeoutSeconds: v.GetInt("worldoffice.timeout_seconds"),
			DefaultCityID:  v.GetInt("worldoffice.default_city_id"),
			CityCacheTTL:   v.GetDuration("worldoffice.city_cache_ttl"),
		},
		Auco: AucoConfig{
			BaseURL:        v.GetString("auco.base_url"),
			APIKey:         v.GetString("auco.apikey"),
			SenderEmail:    v.GetString("auco.sender_email"),
			TimeoutSeconds: v.GetInt("auco.timeout_seconds"),
		},
		Membership: MembershipConfig{
			BaseURL:        v.GetString("membership.base_url"),
			APIKey:         v.GetString("membership.apikey"),
			TimeoutSeconds: v.GetInt("membership.timeout_seconds"),
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:        v.GetString("whatsapp.base_url"),
			Token:          v.GetString("whatsapp.token"),
			PhoneNumberID:  v.GetString("whatsapp.phone_number_id"),
			BlockTemplate:  v.GetString("whatsapp.block_template"),
			TimeoutSeconds: v.GetInt("whatsapp.timeout_seconds"),
		},
		ClickUp: ClickUpConfig{
			BaseURL:        v.GetString("clickup.base_url"),
			Token:          v.GetString("clickup.token"),
			ListID:         v.GetString("clickup.list_id"),
			TimeoutSeconds: v.GetInt("clickup.timeout_seconds"),
		},
		Storage: StorageConfig{
			Enabled:      v.GetBool("storage.enabled"),
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			UseSSL:       v.GetBool("storage.use_ssl"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
			KeyPrefix:    v.GetString("storage.key_prefix"),
		},
		Render: RenderConfig{
			ChromePath: v.GetString("render.chromepath"),
			Timeout:    v.GetDuration("render.timeout"),
			NoSandbox:  v.GetBool("render.no_sandbox"),
		},
		Agreement: AgreementConfig{
			TemplateSlug:   v.GetString("agreement.template_slug"),
			LogoPath:       v.GetString("agreement.logo_path"),
			CompanyName:    v.GetString("agreement.company_name"),
			CompanyTaxID:   v.GetString("agreement.company_tax_id"),
			CompanyContact: v.GetString("agreement.company_contact"),
			IdempotencyTTL: v.GetDuration("agreement.idempotency_ttl"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "fr-backoffice"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// PDF generation holds the response open while the browser renders
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "backoffice"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.WorldOffice.TimeoutSeconds == 0 {
		cfg.WorldOffice.TimeoutSeconds = 10
	}
	if cfg.WorldOffice.DefaultCityID == 0 {
		cfg.WorldOffice.DefaultCityID = 1 // Bogotá
	}
	if cfg.WorldOffice.CityCacheTTL == 0 {
		cfg.WorldOffice.CityCacheTTL = 24 * time.Hour
	}
	if cfg.Auco.TimeoutSeconds == 0 {
		cfg.Auco.TimeoutSeconds = 30
	}
	if cfg.Membership.TimeoutSeconds == 0 {
		cfg.Membership.TimeoutSeconds = 15
	}
	if cfg.WhatsApp.BaseURL == "" {
		cfg.WhatsApp.BaseURL = "https://graph.facebook.com/v19.0"
	}
	if cfg.WhatsApp.TimeoutSeconds == 0 {
		cfg.WhatsApp.TimeoutSeconds = 10
	}
	if cfg.WhatsApp.BlockTemplate == "" {
		cfg.WhatsApp.BlockTemplate = "aviso_bloqueo_cartera"
	}
	if cfg.ClickUp.BaseURL == "" {
		cfg.ClickUp.BaseURL = "https://api.clickup.com/api/v2"
	}
	if cfg.ClickUp.TimeoutSeconds == 0 {
		cfg.ClickUp.TimeoutSeconds = 15
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "acuerdos/"
	}
	if cfg.Render.Timeout == 0 {
		cfg.Render.Timeout = 60 * time.Second
	}
	if cfg.Agreement.TemplateSlug == "" {
		cfg.Agreement.TemplateSlug = "acuerdo-de-pago"
	}
	if cfg.Agreement.LogoPath == "" {
		cfg.Agreement.LogoPath = "assets/logo.png"
	}
	if cfg.Agreement.CompanyName == "" {
		cfg.Agreement.CompanyName = "Futuros Residentes S.A.S."
	}
	if cfg.Agreement.IdempotencyTTL == 0 {
		cfg.Agreement.IdempotencyTTL = 72 * time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.IsProduction() {
		if c.WorldOffice.Token == "" {
			return fmt.Errorf("worldoffice.token is required in production")
		}
		if c.Auco.APIKey == "" {
			return fmt.Errorf("auco.apikey is required in production")
		}
		if c.Auco.SenderEmail == "" {
			return fmt.Errorf("auco.sender_email is required in production")
		}
		if c.Membership.APIKey == "" {
			return fmt.Errorf("membership.apikey is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Render.ChromePath == "" {
			return fmt.Errorf("render.chromepath is required in production (bundled browser binary)")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port for the Redis client.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
