package database

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pagamento-api/config"
	"pagamento-api/internal/domain/billing"
	"pagamento-api/internal/domain/calculos"
)

// Open connects to Postgres and configures the shared pool. The caller owns
// the returned handle and must release it with Close.
func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}

	dsn := withConnectTimeout(cfg.DBURL, cfg.DBConnectTimeout)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := ConfigurePool(db, cfg); err != nil {
		_ = Close(db)
		return nil, err
	}
	return db, nil
}

// ConfigurePool applies the pool limits from cfg to db.
func ConfigurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.DBMaxIdleTime)
	}
	return nil
}

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&billing.Payment{},
		&calculos.Calculation{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// withConnectTimeout adds connect_timeout to a libpq DSN in either URL or
// key=value form, unless the DSN already sets one.
func withConnectTimeout(dsn string, d time.Duration) string {
	if d <= 0 || strings.Contains(dsn, "connect_timeout") {
		return dsn
	}
	secs := strconv.Itoa(int(math.Max(1, math.Ceil(d.Seconds()))))

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("connect_timeout", secs)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(dsn) + " connect_timeout=" + secs
}
