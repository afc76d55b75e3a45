package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/logger"
	"github.com/sitecms/sitecms/pkg/response"
)

const originLoggerModule = "origin"

// ErrCrossOrigin is returned when a state-changing request comes from an origin
// that is neither the API host nor a configured front-end.
var ErrCrossOrigin = apperrors.New("CSRF_ORIGIN", "Cross-origin request rejected", http.StatusForbidden)

var unsafeMethods = map[string]struct{}{
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// OriginGuard rejects unsafe requests whose Origin (or Referer) header names a
// site outside allowedOrigins. Session cookies are sent with SameSite=None, so
// this check is what keeps third-party pages from replaying them. Requests that
// carry no Origin at all, such as server-to-server calls, pass through.
func OriginGuard(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = normaliseOrigin(origin)
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if !isUnsafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		origin := requestOrigin(c.Request)
		if origin == "" || origin == "*" {
			c.Next()
			return
		}
		if _, ok := allowed[origin]; ok || sameHost(origin, c.Request) {
			c.Next()
			return
		}

		logger.WithModule(originLoggerModule).Warn("cross-origin request rejected",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("origin", origin),
		)
		response.Abort(c, ErrCrossOrigin)
	}
}

func requestOrigin(r *http.Request) string {
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		if origin == "null" {
			return origin
		}
		return normaliseOrigin(origin)
	}
	if referer := strings.TrimSpace(r.Header.Get("Referer")); referer != "" {
		return normaliseOrigin(referer)
	}
	return ""
}

func normaliseOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

func sameHost(origin string, r *http.Request) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func isUnsafeMethod(method string) bool {
	_, ok := unsafeMethods[method]
	return ok
}
