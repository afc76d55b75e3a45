package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/sitecms/sitecms/internal/auth"
	"github.com/sitecms/sitecms/internal/services"
	"github.com/sitecms/sitecms/pkg/response"
)

// AdminAuthHandler serves sessions and account creation for the admin realm.
type AdminAuthHandler struct {
	admins      *services.AdminAccountService
	realm       *iauth.Realm
	revocations *iauth.Revocations
}

func NewAdminAuthHandler(admins *services.AdminAccountService, realm *iauth.Realm, revocations *iauth.Revocations) *AdminAuthHandler {
	return &AdminAuthHandler{admins: admins, realm: realm, revocations: revocations}
}

// POST /admin/login
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	admin, err := h.admins.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	identity := iauth.Identity{SubjectID: admin.ID, Email: admin.Email, Name: admin.Name}
	startSession(c, h.realm, identity, admin, "Logged in successfully")
}

// POST /admin/logout
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	endSession(c, h.realm, h.revocations)
}

// GET /admin/profile
func (h *AdminAuthHandler) Profile(c *gin.Context) {
	id, ok := subjectID(c)
	if !ok {
		return
	}

	admin, err := h.admins.GetByID(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Admin profile retrieved successfully", admin)
}

// POST /admin/register
func (h *AdminAuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	admin, err := h.admins.Register(requestContext(c), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Admin created successfully", admin)
}
