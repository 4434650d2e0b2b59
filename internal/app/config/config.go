// Package config はアプリケーション設定を .env・環境変数から読み込みます。
//
// 優先順位は 環境変数 > .env > 構造体のデフォルト値 です。
// キー名は環境変数名を小文字にしたもの（SUPABASE_URL -> supabase_url）です。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"umarket/internal/platform/db"
	"umarket/internal/platform/redis"
	"umarket/internal/platform/supabase"
)

// Store drivers.
const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
)

// Config is the typed application configuration.
type Config struct {
	Port         int    `koanf:"port"`
	GinMode      string `koanf:"gin_mode"`
	LogLevel     string `koanf:"log_level"`
	LogFormat    string `koanf:"log_format"`
	FrontendURLs string `koanf:"frontend_urls"`
	FrontendURL  string `koanf:"frontend_url"`

	SupabaseURL       string        `koanf:"supabase_url"`
	SupabaseAPIKey    string        `koanf:"supabase_api_key"`
	SupabaseJWTSecret string        `koanf:"supabase_jwt_secret"`
	AvatarBucket      string        `koanf:"supabase_avatar_bucket"`
	SupabaseTimeout   time.Duration `koanf:"supabase_timeout"`
	SupabaseRateLimit float64       `koanf:"supabase_rate_limit"`
	SupabaseRateBurst int           `koanf:"supabase_rate_burst"`

	ProductsTable      string `koanf:"supabase_products_table"`
	ProductIDField     string `koanf:"supabase_product_id_field"`
	TransactionsTable  string `koanf:"supabase_transactions_table"`
	TransactionIDField string `koanf:"supabase_transaction_id_field"`
	ProductRelation    string `koanf:"supabase_product_relation"`
	ClothingTable      string `koanf:"supabase_clothing_table"`
	ClothingIDField    string `koanf:"supabase_clothing_id_field"`
	DecorTable         string `koanf:"supabase_decor_table"`
	DecorIDField       string `koanf:"supabase_decor_id_field"`
	TicketsTable       string `koanf:"supabase_tickets_table"`
	TicketsIDField     string `koanf:"supabase_tickets_id_field"`
	ReportsTable       string `koanf:"supabase_reports_table"`
	ReportIDField      string `koanf:"supabase_report_id_field"`

	StoreDriver   string `koanf:"store_driver"`
	DatabaseURL   string `koanf:"database_url"`
	DBHost        string `koanf:"db_host"`
	DBPort        string `koanf:"db_port"`
	DBUser        string `koanf:"db_user"`
	DBPassword    string `koanf:"db_password"`
	DBName        string `koanf:"db_name"`
	DBSSLMode     string `koanf:"db_sslmode"`
	RunMigrations bool   `koanf:"run_migrations"`

	RedisHost       string        `koanf:"redis_host"`
	RedisPort       string        `koanf:"redis_port"`
	RedisPassword   string        `koanf:"redis_password"`
	ProfileCacheTTL time.Duration `koanf:"profile_cache_ttl"`
	ListingCacheTTL time.Duration `koanf:"listing_cache_ttl"`
}

func defaultConfig() Config {
	t := supabase.DefaultTables()
	return Config{
		Port:         8080,
		GinMode:      "debug",
		LogLevel:     "info",
		LogFormat:    "json",
		FrontendURLs: "http://localhost:3000",

		AvatarBucket:      "avatars",
		SupabaseTimeout:   10 * time.Second,
		SupabaseRateLimit: 50,
		SupabaseRateBurst: 20,

		ProductsTable:      t.Products,
		ProductIDField:     t.ProductIDField,
		TransactionsTable:  t.Transactions,
		TransactionIDField: t.TransactionIDField,
		ClothingTable:      t.Clothing,
		ClothingIDField:    t.ClothingIDField,
		DecorTable:         t.Decor,
		DecorIDField:       t.DecorIDField,
		TicketsTable:       t.Tickets,
		TicketsIDField:     t.TicketsIDField,
		ReportsTable:       t.Reports,
		ReportIDField:      t.ReportIDField,

		StoreDriver: DriverSupabase,
		DBPort:      "5432",
		RedisPort:   "6379",

		ProfileCacheTTL: 10 * time.Minute,
		ListingCacheTTL: time.Minute,
	}
}

// Load は envFile（空なら ".env"）を読み込んだうえで設定を組み立て、検証します。
// envFile が存在しなくてもエラーにはしません。
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	// .envを読み込む（既存の環境変数は上書きしない）
	if err := godotenv.Load(envFile); err != nil {
		slog.Info(".env not found; using system environment variables", "path", envFile)
	}

	k := koanf.New(".")
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.SupabaseURL = strings.TrimRight(strings.TrimSpace(c.SupabaseURL), "/")
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.GinMode = strings.ToLower(strings.TrimSpace(c.GinMode))
	// FRONTEND_URLS が明示されていなければ単数形の FRONTEND_URL を使う
	if _, ok := os.LookupEnv("FRONTEND_URLS"); !ok && strings.TrimSpace(c.FrontendURL) != "" {
		c.FrontendURLs = c.FrontendURL
	}
}

// Validate checks the settings the selected store driver cannot run without.
// A missing JWT secret is only warned about; protected routes answer 500 until it is set.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	switch c.StoreDriver {
	case DriverSupabase:
		if c.SupabaseURL == "" {
			errs = append(errs, errors.New("SUPABASE_URL is required when STORE_DRIVER=supabase"))
		}
		if c.SupabaseAPIKey == "" {
			errs = append(errs, errors.New("SUPABASE_API_KEY is required when STORE_DRIVER=supabase"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" && c.DBHost == "" {
			errs = append(errs, errors.New("DATABASE_URL or DB_HOST is required when STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverSupabase, DriverPostgres, c.StoreDriver))
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if c.SupabaseJWTSecret == "" {
		slog.Warn("SUPABASE_JWT_SECRET is not set; authenticated routes will fail")
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AllowedOrigins splits FrontendURLs into the CORS allow-list.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.FrontendURLs, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel parses LogLevel, defaulting to INFO for unknown values.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Supabase returns the REST client configuration.
func (c *Config) Supabase() supabase.Config {
	return supabase.Config{
		URL:          c.SupabaseURL,
		APIKey:       c.SupabaseAPIKey,
		AvatarBucket: c.AvatarBucket,
		Timeout:      c.SupabaseTimeout,
		Tables: supabase.Tables{
			Products:           c.ProductsTable,
			ProductIDField:     c.ProductIDField,
			Transactions:       c.TransactionsTable,
			TransactionIDField: c.TransactionIDField,
			ProductRelation:    c.ProductRelation,
			Clothing:           c.ClothingTable,
			ClothingIDField:    c.ClothingIDField,
			Decor:              c.DecorTable,
			DecorIDField:       c.DecorIDField,
			Tickets:            c.TicketsTable,
			TicketsIDField:     c.TicketsIDField,
			Reports:            c.ReportsTable,
			ReportIDField:      c.ReportIDField,
		},
	}
}

// Database returns the direct Postgres connection settings.
func (c *Config) Database() db.Config {
	return db.Config{
		URL:      c.DatabaseURL,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}

// Redis returns the cache connection settings. An empty REDIS_HOST disables caching.
func (c *Config) Redis() redis.Config {
	if c.RedisHost == "" {
		return redis.Config{}
	}
	return redis.Config{
		Addr:     c.RedisHost + ":" + c.RedisPort,
		Password: c.RedisPassword,
	}
}
