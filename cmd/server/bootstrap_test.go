package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitecms/sitecms/internal/app"
	"github.com/sitecms/sitecms/internal/models"
)

func TestConvertDatabaseConfig(t *testing.T) {
	cfg := &app.Config{}
	cfg.Database.Driver = " PostgreSQL "
	cfg.Database.Postgres = app.DBAuthConfig{
		Host:     "db.internal",
		Port:     5432,
		Database: "sitecms",
		Username: "cms",
		Password: "secret",
		Options:  "sslmode=disable&TimeZone=UTC",
	}

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, 5432, dbCfg.Port)
	require.Equal(t, "sitecms", dbCfg.Name)
	require.Equal(t, map[string]string{"sslmode": "disable", "TimeZone": "UTC"}, dbCfg.Options)

	cfg.Database.Driver = ""
	require.Equal(t, "sqlite", convertDatabaseConfig(cfg).Driver)
}

func TestParseOptions(t *testing.T) {
	require.Nil(t, parseOptions(""))
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, parseOptions("a=1 b=2 junk"))
	require.Equal(t, map[string]string{"charset": "utf8mb4"}, parseOptions("charset=utf8mb4;"))
}

func TestBootstrapRuntime(t *testing.T) {
	dir := t.TempDir()

	cfg := &app.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(dir, "sitecms.db")
	cfg.Storage.Driver = "local"
	cfg.Storage.Local.Root = filepath.Join(dir, "uploads")
	cfg.Auth.BootstrapAdmin = app.BootstrapAdmin{Name: "Boot", Email: "boot@example.com", Password: "B00tstrap!"}
	_, err := app.ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)

	log := zap.NewNop()
	stack, err := bootstrapRuntime(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), log) })

	var admins int64
	require.NoError(t, stack.DB.Model(&models.Admin{}).Count(&admins).Error)
	require.Equal(t, int64(1), admins)

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestBootstrapRuntimeReadinessListsStorage(t *testing.T) {
	dir := t.TempDir()

	cfg := &app.Config{}
	cfg.Database.Path = filepath.Join(dir, "sitecms.db")
	cfg.Storage.Local.Root = filepath.Join(dir, "uploads")
	_, err := app.ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)

	log := zap.NewNop()
	stack, err := bootstrapRuntime(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), log) })

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"component":"storage"`)
}
