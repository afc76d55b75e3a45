package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/sitecms/sitecms/internal/auth"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/logger"
	"github.com/sitecms/sitecms/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxSubjectIDKey = "subjectID"
	CtxSubjectKey   = "subject"
	CtxRealmKey     = "realm"
)

// SubjectLoader re-reads the account a session was issued for. It returns the
// service's not-found error when the account no longer exists.
type SubjectLoader func(ctx context.Context, id string) (any, error)

// RequireSession authenticates the request against realm. The token is read
// from the realm cookie or a bearer header, checked against revocations and
// the subject is reloaded through load.
func RequireSession(realm *iauth.Realm, revocations *iauth.Revocations, load SubjectLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := realm.TokenFromRequest(c.Request)
		if err != nil {
			response.Abort(c, sessionError(err))
			return
		}

		claims, err := realm.Validate(token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, sessionError(err))
			return
		}

		revoked, err := revocations.IsRevoked(c.Request.Context(), claims)
		if err != nil {
			logger.WithModule("auth").Warn("revocation lookup failed", zap.String("realm", realm.Name()), zap.Error(err))
		}
		if revoked {
			response.Abort(c, apperrors.ErrSessionInvalid)
			return
		}

		subject, err := load(c.Request.Context(), claims.Subject)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxSubjectIDKey, claims.Subject)
		c.Set(CtxSubjectKey, subject)
		c.Set(CtxRealmKey, realm.Name())
		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by RequireSession.
func ClaimsFromContext(c *gin.Context) (*iauth.Claims, bool) {
	value, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*iauth.Claims)
	return claims, ok
}

// SubjectID returns the authenticated subject id, or "" when unauthenticated.
func SubjectID(c *gin.Context) string {
	return c.GetString(CtxSubjectIDKey)
}

func sessionError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, iauth.ErrNoToken):
		return apperrors.ErrUnauthorized
	case errors.Is(err, iauth.ErrSessionExpired):
		return apperrors.ErrSessionExpired
	default:
		return apperrors.ErrSessionInvalid
	}
}
