package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/api"
	"github.com/sitecms/sitecms/internal/app"
	iauth "github.com/sitecms/sitecms/internal/auth"
	"github.com/sitecms/sitecms/internal/cache"
	"github.com/sitecms/sitecms/internal/database"
	sharedtestutil "github.com/sitecms/sitecms/internal/database/testutil"
	"github.com/sitecms/sitecms/internal/middleware"
	"github.com/sitecms/sitecms/internal/services"
	"github.com/sitecms/sitecms/pkg/mail"
	"github.com/sitecms/sitecms/pkg/response"
	"github.com/sitecms/sitecms/pkg/storage"
)

// Bootstrap admin credentials seeded into every environment.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "Adm1n!Password"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T          *testing.T
	DB         *gorm.DB
	Router     *gin.Engine
	Services   *services.Registry
	UserRealm  *iauth.Realm
	AdminRealm *iauth.Realm
	Mailer     *RecordingMailer
	Storage    *storage.MemoryStorage
}

// NewEnv provisions a fresh handler test environment with migrations and the bootstrap admin applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithBootstrapAdmin(database.BootstrapAdmin{
		Name:     "Site Admin",
		Email:    AdminEmail,
		Password: AdminPassword,
	}))

	cfg := &app.Config{
		Server: app.ServerConfig{MaxUploadMB: 10},
		CORS:   app.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}, AllowCredentials: true},
	}
	cfg.Monitoring.Prometheus.Enabled = true
	cfg.Monitoring.Prometheus.Endpoint = "/metrics"

	cookie := iauth.CookiePolicy{HTTPOnly: true, Secure: true}
	userRealm, err := iauth.NewRealm(iauth.RealmConfig{Name: iauth.RealmUser, Secret: "user-realm-test-secret", Issuer: "test-suite", TTL: time.Hour, Cookie: cookie})
	require.NoError(t, err)
	adminRealm, err := iauth.NewRealm(iauth.RealmConfig{Name: iauth.RealmAdmin, Secret: "admin-realm-test-secret", Issuer: "test-suite", TTL: time.Hour, Cookie: cookie})
	require.NoError(t, err)

	mailer := &RecordingMailer{}
	store := storage.NewMemory("")

	registry, err := services.NewRegistry(db, mailer, store, services.RegistryConfig{
		OTPTTL:     10 * time.Minute,
		OTPOptions: []services.OTPOption{services.WithOTPGenerator(fixedCode)},
	})
	require.NoError(t, err)

	cacheStore, err := cache.NewDatabaseStore(db)
	require.NoError(t, err)

	router, err := api.NewRouter(api.Dependencies{
		DB:          db,
		Config:      cfg,
		Services:    registry,
		UserRealm:   userRealm,
		AdminRealm:  adminRealm,
		Revocations: iauth.NewRevocations(cacheStore),
		RateStore:   middleware.NewMemoryRateStore(),
		Storage:     store,
	})
	require.NoError(t, err)

	return &Env{
		T:          t,
		DB:         db,
		Router:     router,
		Services:   registry,
		UserRealm:  userRealm,
		AdminRealm: adminRealm,
		Mailer:     mailer,
		Storage:    store,
	}
}

// OTPCode is the code every environment issues.
const OTPCode = "123456"

func fixedCode() (string, error) { return OTPCode, nil }

// RecordingMailer keeps every message instead of delivering it.
type RecordingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
}

// Send records msg.
func (m *RecordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *RecordingMailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

// SentTo returns the messages addressed to email.
func (m *RecordingMailer) SentTo(email string) []mail.Message {
	var out []mail.Message
	for _, msg := range m.Sent() {
		for _, to := range msg.To {
			if to == email {
				out = append(out, msg)
				break
			}
		}
	}
	return out
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

// LastOTP extracts the most recent verification code mailed to email.
func (e *Env) LastOTP(email string) string {
	e.T.Helper()
	msgs := e.Mailer.SentTo(email)
	require.NotEmpty(e.T, msgs, "no mail sent to %s", email)
	last := msgs[len(msgs)-1]
	code := codePattern.FindString(last.Text + " " + last.HTML)
	require.NotEmpty(e.T, code, "no code in message to %s", email)
	return code
}

// SessionPayload mirrors the login response data.
type SessionPayload struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Account   json.RawMessage `json:"account"`
}

// RegisterVerifiedUser signs a user up, verifies the emailed code and returns the session token.
func (e *Env) RegisterVerifiedUser(name string) (email, token string) {
	e.T.Helper()

	email = "user-" + uuid.NewString()[:8] + "@example.com"
	w := e.Request(http.MethodPost, "/user/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": "Str0ng!Pass",
	}, "")
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())

	w = e.Request(http.MethodPost, "/user/verify-otp", map[string]string{
		"email": email,
		"otp":   e.LastOTP(email),
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	var session SessionPayload
	DecodeInto(e.T, DecodeResponse(e.T, w).Data, &session)
	require.NotEmpty(e.T, session.Token)
	return email, session.Token
}

// LoginAdmin authenticates the bootstrap admin and returns the session token.
func (e *Env) LoginAdmin() string {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/admin/login", map[string]string{
		"email":    AdminEmail,
		"password": AdminPassword,
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	var session SessionPayload
	DecodeInto(e.T, DecodeResponse(e.T, w).Data, &session)
	require.NotEmpty(e.T, session.Token)
	return session.Token
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and bearer auth automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.Do(req, token)
}

// File is an upload attached to a multipart request.
type File struct {
	Field       string
	Name        string
	ContentType string
	Body        []byte
}

// PNG returns a small image upload for field.
func PNG(field, name string) File {
	return File{Field: field, Name: name, ContentType: "image/png", Body: []byte("\x89PNG fake " + name)}
}

// Multipart executes a multipart/form-data request with repeated form values and files.
func (e *Env) Multipart(method, path string, fields map[string][]string, files []File, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, value := range values {
			require.NoError(e.T, writer.WriteField(name, value))
		}
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+f.Field+`"; filename="`+f.Name+`"`)
		header.Set("Content-Type", f.ContentType)
		part, err := writer.CreatePart(header)
		require.NoError(e.T, err)
		_, err = part.Write(f.Body)
		require.NoError(e.T, err)
	}
	require.NoError(e.T, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.Do(req, token)
}

// Do serves req with an optional bearer token.
func (e *Env) Do(req *http.Request, token string) *httptest.ResponseRecorder {
	e.T.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
