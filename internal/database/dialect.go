package database

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// dialect turns a Config into a driver specific gorm.Dialector.
type dialect struct {
	dsn     func(Config) (string, error)
	open    func(dsn string) gorm.Dialector
	prepare func(*gorm.DB) error
}

var dialects = map[string]dialect{
	"sqlite":   {dsn: sqliteDSN, open: sqlite.Open, prepare: enableForeignKeys},
	"postgres": {dsn: postgresDSN, open: postgres.Open},
	"mysql":    {dsn: mysqlDSN, open: gormmysql.Open},
}

func lookupDialect(driver string) (string, dialect, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	switch name {
	case "":
		name = "sqlite"
	case "postgresql", "pg":
		name = "postgres"
	}
	d, ok := dialects[name]
	if !ok {
		return "", dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
	return name, d, nil
}

func sqliteDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" || strings.EqualFold(path, ":memory:") {
		return "file::memory:?cache=shared&_foreign_keys=1", nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	return "file:" + filepath.ToSlash(path) + "?_foreign_keys=1&_journal_mode=WAL", nil
}

func enableForeignKeys(db *gorm.DB) error {
	return db.Exec("PRAGMA foreign_keys = ON").Error
}

// postgresDSN renders a libpq keyword/value connection string.
func postgresDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("postgres configuration requires user and database name")
	}

	pairs := map[string]string{
		"host":    valueOr(cfg.Host, "localhost"),
		"port":    strconv.Itoa(portOr(cfg.Port, 5432)),
		"user":    cfg.User,
		"dbname":  cfg.Name,
		"sslmode": "disable",
	}
	if cfg.Password != "" {
		pairs["password"] = cfg.Password
	}
	for key, value := range cfg.Options {
		pairs[key] = value
	}

	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+quoteLibpq(pairs[key]))
	}
	return strings.Join(parts, " "), nil
}

func quoteLibpq(value string) string {
	if value != "" && !strings.ContainsAny(value, " '\\\t") {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

// mysqlDSN renders the DSN with the driver's own formatter.
func mysqlDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(valueOr(cfg.Host, "127.0.0.1"), strconv.Itoa(portOr(cfg.Port, 3306)))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	for key, value := range cfg.Options {
		switch key {
		case "tls":
			mc.TLSConfig = value
		case "parseTime":
		default:
			mc.Params[key] = value
		}
	}
	return mc.FormatDSN(), nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func portOr(port, fallback int) int {
	if port <= 0 {
		return fallback
	}
	return port
}
