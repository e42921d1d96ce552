package database

import (
	"strings"

	"mortgage-dashboard/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLitePrefix marks a local development DSN, e.g. sqlite://dashboard.db.
const SQLitePrefix = "sqlite://"

// Open opens a GORM DB from DSN (Supabase/Postgres pooler URL, or sqlite:// for local runs).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer, Supabase).
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if IsSQLite(dsn) {
		return gorm.Open(sqlite.Open(strings.TrimPrefix(dsn, SQLitePrefix)), cfg)
	}
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), cfg)
}

func IsSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, SQLitePrefix)
}

// AutoMigrate creates the dashboard tables. Supabase owns the hosted schema, so this only
// runs for local databases.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.MortgagePackage{}, &domain.Profile{})
}
