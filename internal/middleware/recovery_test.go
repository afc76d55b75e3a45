package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sitecms/sitecms/pkg/response"
)

func serveOnce(r http.Handler, method, path string) (*httptest.ResponseRecorder, response.Response) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var payload response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &payload)
	return w, payload
}

func TestRecoveryHidesPanicValue(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Recovery())
	r.GET("/blogs/:id", func(c *gin.Context) { panic("nil pointer in blog renderer") })

	w, payload := serveOnce(r, http.MethodGet, "/blogs/42")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.False(t, payload.Success)
	require.Equal(t, "INTERNAL_SERVER_ERROR", payload.Error.Code)
	require.NotContains(t, w.Body.String(), "renderer")
}

func TestRecoverySkipsBodyForDisconnectedClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Recovery())
	r.GET("/images", func(c *gin.Context) {
		panic(&net.OpError{Op: "write", Err: os.NewSyscallError("write", syscall.EPIPE)})
	})

	w, _ := serveOnce(r, http.MethodGet, "/images")
	require.Empty(t, w.Body.String())
}

func TestNotFoundHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.NoRoute(NotFoundHandler)

	w, payload := serveOnce(r, http.MethodGet, "/missing")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.False(t, payload.Success)
	require.Equal(t, "NOT_FOUND", payload.Error.Code)
	require.Contains(t, payload.Message, "route /missing not found")
}
