package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	connMaxIdleTime = 15 * time.Minute
	connMaxLifetime = time.Hour
	connPingTimeout = 5 * time.Second
)

// Connect opens the analytics store and fails fast when postgres is not
// reachable, so the runtime never starts with a dead pool.
func Connect(ctx context.Context, databaseURL string, maxConns int32) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, storageErr("open analytics store", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("analytics store handle: %w", err)
	}
	configurePool(sqlDB, maxConns)

	pingCtx, cancel := context.WithTimeout(ctx, connPingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, storageErr("ping analytics store", err)
	}
	return db, nil
}

// configurePool keeps half the connection budget idle for the hot
// predict path. A non-positive budget leaves database/sql defaults.
func configurePool(sqlDB *sql.DB, maxConns int32) {
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(int(maxConns))
		sqlDB.SetMaxIdleConns(max(1, int(maxConns)/2))
	}
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
}

func migrationNames() ([]string, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// RunMigrations applies every embedded migration in lexical order. The
// scripts are idempotent so reruns on startup are safe.
func RunMigrations(ctx context.Context, db *gorm.DB, log *slog.Logger) error {
	names, err := migrationNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		raw, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := db.WithContext(ctx).Exec(string(raw)).Error; err != nil {
			return storageErr("apply migration "+name, err)
		}
		if log != nil {
			log.InfoContext(ctx, "migration applied", "operation", "migrate", "migration", name)
		}
	}
	return nil
}
