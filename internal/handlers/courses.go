package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/models"
	"github.com/sitecms/sitecms/internal/services"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/response"
)

const coverImageField = "coverImage"

// CourseHandler serves the ordered course catalogue under /web.
type CourseHandler struct {
	courses *services.CourseService
}

func NewCourseHandler(courses *services.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// courseForm is the multipart shape: tools may repeat or hold a JSON array,
// modules holds a JSON array.
type courseForm struct {
	ID          string   `form:"id"`
	Title       string   `form:"title"`
	Heading     string   `form:"heading"`
	Description string   `form:"description"`
	Tools       []string `form:"tools"`
	Modules     string   `form:"modules"`
}

type courseJSON struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Heading     string                `json:"heading"`
	Description string                `json:"description"`
	Tools       []string              `json:"tools"`
	Modules     []models.CourseModule `json:"modules"`
}

type reorderCoursesRequest struct {
	OrderedCourseIDs []string `json:"orderedCourseIds" validate:"required"`
}

// bindCourse accepts either a multipart form or a JSON body.
func bindCourse(c *gin.Context) (string, services.CourseInput, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req courseJSON
		if !bindAndValidate(c, &req) {
			return "", services.CourseInput{}, false
		}
		return req.ID, services.CourseInput{
			Title:       req.Title,
			Heading:     req.Heading,
			Description: req.Description,
			Tools:       req.Tools,
			Modules:     req.Modules,
		}, true
	}

	var form courseForm
	if !bindAndValidate(c, &form) {
		return "", services.CourseInput{}, false
	}

	input := services.CourseInput{
		Title:       form.Title,
		Heading:     form.Heading,
		Description: form.Description,
		Tools:       form.Tools,
	}
	if len(form.Tools) == 1 && strings.HasPrefix(strings.TrimSpace(form.Tools[0]), "[") {
		var tools []string
		if err := json.Unmarshal([]byte(form.Tools[0]), &tools); err != nil {
			response.Error(c, apperrors.NewBadRequest("tools must be a JSON array of strings"))
			return "", services.CourseInput{}, false
		}
		input.Tools = tools
	}
	if raw := strings.TrimSpace(form.Modules); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Modules); err != nil {
			response.Error(c, apperrors.NewBadRequest("modules must be a JSON array"))
			return "", services.CourseInput{}, false
		}
		if input.Modules == nil {
			input.Modules = []models.CourseModule{}
		}
	}
	return form.ID, input, true
}

// POST /web/courses
func (h *CourseHandler) Create(c *gin.Context) {
	adminID, ok := subjectID(c)
	if !ok {
		return
	}
	_, input, ok := bindCourse(c)
	if !ok {
		return
	}

	var files uploadSet
	defer files.Close()
	cover, err := files.single(c, coverImageField)
	if err != nil {
		response.Error(c, err)
		return
	}

	course, err := h.courses.Create(requestContext(c), adminID, input, cover)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Course created successfully", course)
}

// GET /web/courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Courses retrieved successfully", courses)
}

// PUT /web/courses
func (h *CourseHandler) Update(c *gin.Context) {
	id, input, ok := bindCourse(c)
	if !ok {
		return
	}

	var files uploadSet
	defer files.Close()
	cover, err := files.single(c, coverImageField)
	if err != nil {
		response.Error(c, err)
		return
	}

	course, err := h.courses.Update(requestContext(c), id, input, cover)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Course updated successfully", course)
}

// DELETE /web/course/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(requestContext(c), pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Course deleted successfully", nil)
}

// PUT /web/courses/order
func (h *CourseHandler) Reorder(c *gin.Context) {
	var req reorderCoursesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.courses.Reorder(requestContext(c), req.OrderedCourseIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Courses reordered successfully", nil)
}
