package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	DatabaseURL         string
	RedisURL            string
	SupabaseURL         string // e.g. https://<project>.supabase.co, used for Auth API calls
	SupabaseAnonKey     string // sent as apikey to the Auth API
	SupabaseJWTSecret   string // when set, access tokens are verified locally
	AuthWebhookSecret   string // X-Webhook-Secret expected on /api/v1/auth/events
	AuthDisabled        bool   // development only: every request runs as an anonymous admin
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
	PageSize            int
	TagBackfillSchedule string // cron spec or @every; empty disables the job
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("TAG_BACKFILL_SCHEDULE", "@every 1h")

	env := strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))
	if env == "" {
		env = "development"
	}

	dbURL := v.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = v.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = v.GetString("DATABASE_URL_TEST")
	}

	port := v.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	pageSize := v.GetInt("PAGE_SIZE")
	if pageSize < 1 {
		pageSize = 10
	}

	cfg := &Config{
		Env:                 env,
		Port:                port,
		LogLevel:            v.GetString("LOG_LEVEL"),
		DatabaseURL:         dbURL,
		RedisURL:            v.GetString("REDIS_URL"),
		SupabaseURL:         strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabaseAnonKey:     v.GetString("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret:   v.GetString("SUPABASE_JWT_SECRET"),
		AuthWebhookSecret:   v.GetString("AUTH_WEBHOOK_SECRET"),
		AuthDisabled:        strings.EqualFold(v.GetString("AUTH_DISABLED"), "true"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		PageSize:            pageSize,
		TagBackfillSchedule: strings.TrimSpace(v.GetString("TAG_BACKFILL_SCHEDULE")),
	}
	return cfg, cfg.Validate()
}

// Validate rejects combinations the server cannot run with.
func (c *Config) Validate() error {
	if c.AuthDisabled && c.IsProduction() {
		return errors.New("config: AUTH_DISABLED cannot be used in production")
	}
	if !c.AuthDisabled && c.SupabaseJWTSecret == "" && c.SupabaseURL == "" {
		return errors.New("config: set SUPABASE_JWT_SECRET or SUPABASE_URL to verify access tokens")
	}
	if c.IsProduction() && c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL_PROD is required in production")
	}
	return nil
}
