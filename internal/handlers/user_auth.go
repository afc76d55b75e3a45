package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/sitecms/sitecms/internal/auth"
	"github.com/sitecms/sitecms/internal/middleware"
	"github.com/sitecms/sitecms/internal/models"
	"github.com/sitecms/sitecms/internal/services"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/response"
)

// UserAuthHandler serves registration, email verification and sessions for
// the user realm.
type UserAuthHandler struct {
	accounts    *services.UserAccountService
	otp         *services.OTPService
	realm       *iauth.Realm
	revocations *iauth.Revocations
}

func NewUserAuthHandler(accounts *services.UserAccountService, otp *services.OTPService, realm *iauth.Realm, revocations *iauth.Revocations) *UserAuthHandler {
	return &UserAuthHandler{accounts: accounts, otp: otp, realm: realm, revocations: revocations}
}

type registerRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type verifyOTPRequest struct {
	Email string `json:"email" form:"email" validate:"required"`
	OTP   string `json:"otp" form:"otp" validate:"required"`
}

type resendOTPRequest struct {
	Email string `json:"email" form:"email" validate:"required"`
}

// POST /user/register
func (h *UserAuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.accounts.Register(requestContext(c), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "User created successfully", user)
}

// POST /user/login
func (h *UserAuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.accounts.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	startSession(c, h.realm, userIdentity(user), user, "Logged in successfully")
}

// POST /user/verify-otp
func (h *UserAuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.otp.VerifyCode(requestContext(c), req.Email, req.OTP)
	if err != nil {
		response.Error(c, err)
		return
	}

	startSession(c, h.realm, userIdentity(user), user, "OTP verified successfully")
}

// POST /user/resend-otp
func (h *UserAuthHandler) ResendOTP(c *gin.Context) {
	var req resendOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.otp.ResendCode(requestContext(c), req.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "OTP sent to email", nil)
}

// POST /user/logout
func (h *UserAuthHandler) Logout(c *gin.Context) {
	endSession(c, h.realm, h.revocations)
}

// GET /user/profile
func (h *UserAuthHandler) Profile(c *gin.Context) {
	id, ok := subjectID(c)
	if !ok {
		return
	}

	user, err := h.accounts.GetByID(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User profile retrieved successfully", user)
}

// GET /user/validate
func (h *UserAuthHandler) Validate(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, "Token is valid", gin.H{
		"valid":     true,
		"user":      claims.Identity(),
		"expiresAt": claims.ExpiresAt.Time,
	})
}

func userIdentity(user *models.User) iauth.Identity {
	return iauth.Identity{SubjectID: user.ID, Email: user.Email, Name: user.Name}
}
