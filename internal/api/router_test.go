package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sitecms/sitecms/internal/app"
	iauth "github.com/sitecms/sitecms/internal/auth"
	"github.com/sitecms/sitecms/internal/database"
	"github.com/sitecms/sitecms/internal/database/testutil"
	"github.com/sitecms/sitecms/internal/middleware"
	"github.com/sitecms/sitecms/internal/monitoring"
	"github.com/sitecms/sitecms/internal/services"
	"github.com/sitecms/sitecms/pkg/mail"
	"github.com/sitecms/sitecms/pkg/storage"
)

func testDependencies(t *testing.T, store storage.Storage, mutate func(*app.Config)) Dependencies {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithBootstrapAdmin(database.BootstrapAdmin{
		Name:     "Router Admin",
		Email:    "router-admin@example.com",
		Password: "Rout3rAdmin!",
	}))

	cfg := &app.Config{
		Server: app.ServerConfig{MaxUploadMB: 1},
		CORS:   app.CORSConfig{AllowedOrigins: []string{"https://site.example.com"}},
	}
	cfg.Monitoring.Prometheus.Enabled = true
	cfg.Monitoring.Prometheus.Endpoint = "/metrics"
	if mutate != nil {
		mutate(cfg)
	}

	mailer, err := mail.New(mail.Settings{Provider: mail.ProviderNone})
	require.NoError(t, err)
	registry, err := services.NewRegistry(db, mailer, store, services.RegistryConfig{OTPTTL: time.Minute})
	require.NoError(t, err)

	userRealm, err := iauth.NewRealm(iauth.RealmConfig{Name: iauth.RealmUser, Secret: "router-user-secret"})
	require.NoError(t, err)
	adminRealm, err := iauth.NewRealm(iauth.RealmConfig{Name: iauth.RealmAdmin, Secret: "router-admin-secret"})
	require.NoError(t, err)

	return Dependencies{
		DB:         db,
		Config:     cfg,
		Services:   registry,
		UserRealm:  userRealm,
		AdminRealm: adminRealm,
		RateStore:  middleware.NewMemoryRateStore(),
		Storage:    store,
	}
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	router, err := NewRouter(testDependencies(t, storage.NewMemory(""), nil))
	require.NoError(t, err)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	for _, path := range []string{"/blog", "/web/services", "/web/courses", "/web/images", "/about/team"} {
		w = serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, "%s: %s", path, w.Body.String())
	}

	for _, path := range []string{"/user/profile", "/admin/profile", "/blog/admin/all", "/comment/admin/pending", "/consult"} {
		w = serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s: %s", path, w.Body.String())
	}

	w = serve(router, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), `"success":false`)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router, err := NewRouter(testDependencies(t, storage.NewMemory(""), nil))
	require.NoError(t, err)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `sitecms_api_latency_seconds_count{method="GET",path="/health",status="200"}`)
}

func TestRouter_MetricsDisabled(t *testing.T) {
	router, err := NewRouter(testDependencies(t, storage.NewMemory(""), func(cfg *app.Config) {
		cfg.Monitoring.Prometheus.Enabled = false
	}))
	require.NoError(t, err)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ServesLocalUploads(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "blogs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "blogs", "hello.png"), []byte("png"), 0o644))

	local, err := storage.NewLocal(storage.LocalSettings{Root: root, PublicURL: "http://localhost:8080/uploads/"})
	require.NoError(t, err)

	router, err := NewRouter(testDependencies(t, local, nil))
	require.NoError(t, err)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/uploads/blogs/hello.png", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "png", w.Body.String())
}

func TestRouter_CrossOriginWritesAreRefused(t *testing.T) {
	router, err := NewRouter(testDependencies(t, storage.NewMemory(""), nil))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example.net")
	w := serve(router, req)
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodOptions, "/contact", nil)
	req.Header.Set("Origin", "https://site.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = serve(router, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://site.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_AuthRoutesAreRateLimited(t *testing.T) {
	router, err := NewRouter(testDependencies(t, storage.NewMemory(""), func(cfg *app.Config) {
		cfg.RateLimit.AuthRequests = 2
		cfg.RateLimit.AuthWindow = time.Minute
	}))
	require.NoError(t, err)

	var codes []int
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"email":"nobody@example.com","password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		codes = append(codes, serve(router, req).Code)
	}
	require.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)

	// Public reads use a separate budget.
	w := serve(router, httptest.NewRequest(http.MethodGet, "/blog", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RequiresDependencies(t *testing.T) {
	_, err := NewRouter(Dependencies{})
	require.Error(t, err)
}

func TestStaticMount(t *testing.T) {
	require.Equal(t, "/static", staticMount("/static"))
	require.Equal(t, "/uploads", staticMount("https://cdn.example.com/uploads/"))
	require.Equal(t, "", staticMount("https://cdn.example.com"))
	require.Equal(t, "", staticMount("::"))
}

func TestRouter_HealthProbes(t *testing.T) {
	deps := testDependencies(t, storage.NewMemory(""), nil)
	router, err := NewRouter(deps)
	require.NoError(t, err)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"component":"database"`)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, w.Code)

	deps.Health = monitoring.NewHealth(time.Second).
		Ready(monitoring.Directory("storage", filepath.Join(t.TempDir(), "missing")))
	router, err = NewRouter(deps)
	require.NoError(t, err)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"status":"down"`)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "SERVICE_UNAVAILABLE")
}
