package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/services"
	"github.com/sitecms/sitecms/pkg/response"
)

// LeadHandler receives consultation requests and contact messages.
type LeadHandler struct {
	leads *services.LeadService
}

func NewLeadHandler(leads *services.LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

type consultRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Company  string `json:"company" form:"company"`
	Phone    string `json:"phone" form:"phone"`
	Interest string `json:"interest" form:"interest"`
	Message  string `json:"message" form:"message"`
}

type contactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// POST /consult
func (h *LeadHandler) CreateConsult(c *gin.Context) {
	var req consultRequest
	if !bindAndValidate(c, &req) {
		return
	}
	consult, err := h.leads.CreateConsult(requestContext(c), services.ConsultInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Consultation request submitted successfully", consult)
}

// GET /consult
func (h *LeadHandler) ListConsults(c *gin.Context) {
	consults, err := h.leads.ListConsults(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Consultation requests retrieved successfully", consults)
}

// DELETE /consult/:id
func (h *LeadHandler) DeleteConsult(c *gin.Context) {
	if err := h.leads.DeleteConsult(requestContext(c), pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Consultation request deleted successfully", nil)
}

// POST /contact
func (h *LeadHandler) CreateContact(c *gin.Context) {
	var req contactRequest
	if !bindAndValidate(c, &req) {
		return
	}
	contact, err := h.leads.CreateContact(requestContext(c), services.ContactInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Message sent successfully", contact)
}

// GET /contact
func (h *LeadHandler) ListContacts(c *gin.Context) {
	contacts, err := h.leads.ListContacts(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Messages retrieved successfully", contacts)
}

// DELETE /contact/:id
func (h *LeadHandler) DeleteContact(c *gin.Context) {
	if err := h.leads.DeleteContact(requestContext(c), pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Message deleted successfully", nil)
}
