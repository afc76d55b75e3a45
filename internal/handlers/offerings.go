package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/services"
	"github.com/sitecms/sitecms/pkg/response"
)

// OfferingHandler serves the ordered list of services under /web.
type OfferingHandler struct {
	offerings *services.OfferingService
}

func NewOfferingHandler(offerings *services.OfferingService) *OfferingHandler {
	return &OfferingHandler{offerings: offerings}
}

type offeringRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description []string `json:"description"`
	Process     []string `json:"process"`
	Benefits    []string `json:"benefits"`
}

func (r offeringRequest) input() services.OfferingInput {
	return services.OfferingInput{Name: r.Name, Description: r.Description, Process: r.Process, Benefits: r.Benefits}
}

type reorderServicesRequest struct {
	OrderedServiceIDs []string `json:"orderedServiceIds" validate:"required"`
}

// POST /web/services
func (h *OfferingHandler) Create(c *gin.Context) {
	adminID, ok := subjectID(c)
	if !ok {
		return
	}
	var req offeringRequest
	if !bindAndValidate(c, &req) {
		return
	}

	offering, err := h.offerings.Create(requestContext(c), adminID, req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Service created successfully", offering)
}

// GET /web/services
func (h *OfferingHandler) List(c *gin.Context) {
	offerings, err := h.offerings.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Services retrieved successfully", offerings)
}

// PUT /web/services
func (h *OfferingHandler) Update(c *gin.Context) {
	var req offeringRequest
	if !bindAndValidate(c, &req) {
		return
	}

	offering, err := h.offerings.Update(requestContext(c), req.ID, req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Service updated successfully", offering)
}

// DELETE /web/service/:id
func (h *OfferingHandler) Delete(c *gin.Context) {
	if err := h.offerings.Delete(requestContext(c), pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Service deleted successfully", nil)
}

// PUT /web/services/order
func (h *OfferingHandler) Reorder(c *gin.Context) {
	var req reorderServicesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.offerings.Reorder(requestContext(c), req.OrderedServiceIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Services reordered successfully", nil)
}
