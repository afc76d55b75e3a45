package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/services"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/response"
)

var galleryDateLayouts = []string{time.RFC3339, "2006-01-02"}

// GalleryHandler serves the photo gallery under /web.
type GalleryHandler struct {
	gallery *services.GalleryService
}

func NewGalleryHandler(gallery *services.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// galleryBatchForm carries captions parallel to the uploaded images.
type galleryBatchForm struct {
	Titles       []string `form:"titles"`
	Descriptions []string `form:"descriptions"`
	Dates        []string `form:"dates"`
}

type galleryUpdateRequest struct {
	ID          string `json:"id" form:"id"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Date        string `json:"date" form:"date"`
}

// POST /web/images
func (h *GalleryHandler) CreateBatch(c *gin.Context) {
	adminID, ok := subjectID(c)
	if !ok {
		return
	}
	var form galleryBatchForm
	if !bindAndValidate(c, &form) {
		return
	}

	var files uploadSet
	defer files.Close()
	uploads, err := files.all(c, "images")
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]services.GalleryItem, 0, len(uploads))
	for i, upload := range uploads {
		date, err := parseGalleryDate(at(form.Dates, i))
		if err != nil {
			response.Error(c, err)
			return
		}
		items = append(items, services.GalleryItem{
			Upload:      upload,
			Title:       at(form.Titles, i),
			Description: at(form.Descriptions, i),
			Date:        date,
		})
	}

	images, err := h.gallery.CreateBatch(requestContext(c), adminID, items)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Images uploaded successfully", images)
}

// GET /web/images
func (h *GalleryHandler) List(c *gin.Context) {
	images, err := h.gallery.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Images retrieved successfully", images)
}

// PUT /web/images
func (h *GalleryHandler) Update(c *gin.Context) {
	var req galleryUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	date, err := parseGalleryDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	var files uploadSet
	defer files.Close()
	image, err := files.single(c, imageField)
	if err != nil {
		response.Error(c, err)
		return
	}

	record, err := h.gallery.Update(requestContext(c), req.ID, services.GalleryUpdate{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
	}, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Image updated successfully", record)
}

// DELETE /web/image/:id
func (h *GalleryHandler) Delete(c *gin.Context) {
	if err := h.gallery.Delete(requestContext(c), pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Image deleted successfully", nil)
}

func parseGalleryDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range galleryDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, apperrors.NewBadRequest("date must be YYYY-MM-DD or RFC 3339")
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
