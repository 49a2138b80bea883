package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/studentrelief/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errNoDatabaseURL = errors.New("DATABASE_URL is not set")

// NewDBConnection opens and pings the Postgres pool. Statements are logged
// only in development. Driver errors are translated to gorm sentinels so the
// repositories can map them onto domain errors.
func NewDBConnection(cnf *config.DB, appEnv string) (*gorm.DB, error) {
	if cnf == nil || cnf.Url == "" {
		return nil, errNoDatabaseURL
	}

	level := logger.Silent
	if appEnv == "development" {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cnf.Url), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	pool.SetMaxOpenConns(cnf.MaxOpenConns)
	pool.SetMaxIdleConns(cnf.MaxIdleConns)
	pool.SetConnMaxLifetime(cnf.ConnMaxLife)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
