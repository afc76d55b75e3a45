package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/middleware"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// subjectID returns the id of the authenticated user or admin. It writes a 401
// and returns false when the route was reached without a session.
func subjectID(c *gin.Context) (string, bool) {
	id := middleware.SubjectID(c)
	if id == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return "", false
	}
	return id, true
}

func pathID(c *gin.Context, name string) string {
	return strings.TrimSpace(c.Param(name))
}
