package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/sitecms/sitecms/internal/auth"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/logger"
	"github.com/sitecms/sitecms/pkg/response"
)

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Account   any       `json:"account"`
}

// startSession issues a realm token, writes the session cookie and echoes the
// token in the response body for clients that prefer bearer auth.
func startSession(c *gin.Context, realm *iauth.Realm, identity iauth.Identity, account any, message string) {
	session, err := realm.Issue(identity)
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
		return
	}
	realm.SetCookie(c.Writer, session)
	response.Success(c, http.StatusOK, message, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Account:   account,
	})
}

// endSession clears the realm cookie and, when the request still carries a
// valid token, records it as revoked. Logging out never fails.
func endSession(c *gin.Context, realm *iauth.Realm, revocations *iauth.Revocations) {
	if token, err := realm.TokenFromRequest(c.Request); err == nil {
		if claims, err := realm.Validate(token); err == nil {
			if err := revocations.Revoke(requestContext(c), claims); err != nil {
				logger.WithModule("auth").Warn("revoke session failed",
					zap.String("realm", realm.Name()),
					zap.Error(err),
				)
			}
		}
	}
	realm.ClearCookie(c.Writer)
	response.Success(c, http.StatusOK, "Logged out successfully", nil)
}
