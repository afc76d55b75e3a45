package monitoring

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"
)

// Pinger is anything that can report its own reachability, such as the Redis cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Database pings the SQL connection pool.
func Database(db *gorm.DB) Check {
	return Check{Name: "database", Probe: func(ctx context.Context) error {
		if db == nil {
			return errors.New("database not configured")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// Cache pings a shared cache. A missing cache degrades readiness because the
// server falls back to database-backed counters.
func Cache(p Pinger) Check {
	return Check{Name: "cache", Optional: true, Probe: func(ctx context.Context) error {
		if p == nil {
			return errors.New("cache not configured")
		}
		return p.Ping(ctx)
	}}
}

// Directory verifies that a local upload directory exists.
func Directory(name, path string) Check {
	return Check{Name: name, Probe: func(context.Context) error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", path)
		}
		return nil
	}}
}
