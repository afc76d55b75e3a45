package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sitecms/sitecms/pkg/logger"
)

// Logger writes a concise structured access log for each request. Server
// errors are logged at error level together with any errors attached to the
// context by the response helpers.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if subject := SubjectID(c); subject != "" {
			fields = append(fields, zap.String("subject_id", subject), zap.String("realm", c.GetString(CtxRealmKey)))
		}

		log := logger.WithModule("http")
		if status >= 500 {
			if len(c.Errors) > 0 {
				fields = append(fields, zap.String("errors", c.Errors.String()))
			}
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}
