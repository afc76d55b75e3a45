package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func securityHeadersFor(production bool) http.Header {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SecurityHeaders(production))
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	return w.Header()
}

func TestSecurityHeaders(t *testing.T) {
	headers := securityHeadersFor(false)

	require.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	require.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	require.Contains(t, headers.Get("Content-Security-Policy"), "default-src 'self'")
	require.Equal(t, "no-referrer", headers.Get("Referrer-Policy"))
	require.Empty(t, headers.Get("Strict-Transport-Security"))
}

func TestSecurityHeadersProductionAddsHSTS(t *testing.T) {
	headers := securityHeadersFor(true)

	require.Equal(t, "max-age=31536000; includeSubDomains", headers.Get("Strict-Transport-Security"))
}
