package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/services"
	"github.com/sitecms/sitecms/pkg/response"
)

// BlogHandler exposes user posts and their moderation.
type BlogHandler struct {
	blogs *services.BlogService
}

func NewBlogHandler(blogs *services.BlogService) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

type blogRequest struct {
	Title    string `json:"title" form:"title"`
	Excerpt  string `json:"excerpt" form:"excerpt"`
	Exerpt   string `json:"exerpt" form:"exerpt"`
	Content  string `json:"content" form:"content"`
	Category string `json:"category" form:"category"`
}

func (r blogRequest) input() services.BlogInput {
	excerpt := r.Excerpt
	if strings.TrimSpace(excerpt) == "" {
		excerpt = r.Exerpt
	}
	return services.BlogInput{Title: r.Title, Excerpt: excerpt, Content: r.Content, Category: r.Category}
}

type rejectRequest struct {
	Reason string `json:"reason" form:"reason"`
}

// POST /blog
func (h *BlogHandler) Create(c *gin.Context) {
	userID, ok := subjectID(c)
	if !ok {
		return
	}
	var req blogRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var files uploadSet
	defer files.Close()
	images, err := files.all(c, "images")
	if err != nil {
		response.Error(c, err)
		return
	}

	blog, err := h.blogs.Create(requestContext(c), userID, req.input(), images)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Blog post created successfully", blog)
}

// GET /blog
func (h *BlogHandler) List(c *gin.Context) {
	h.list(c, false)
}

// GET /blog/admin/all
func (h *BlogHandler) AdminList(c *gin.Context) {
	h.list(c, true)
}

func (h *BlogHandler) list(c *gin.Context, includeUnapproved bool) {
	query := services.PageQuery{
		Page:     parseIntQuery(c, "page", 1),
		Limit:    parseIntQuery(c, "limit", 10),
		SortBy:   c.DefaultQuery("sortBy", "createdAt"),
		SortType: sortDirection(c.Query("sortType")),
	}

	blogs, total, err := h.blogs.List(requestContext(c), services.BlogListOptions{
		PageQuery:         query,
		IncludeUnapproved: includeUnapproved,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	page, limit := query.Window()
	response.SuccessWithMeta(c, http.StatusOK, "Blog posts retrieved successfully", blogs, response.NewMeta(page, limit, total))
}

// GET /blog/user
func (h *BlogHandler) ListMine(c *gin.Context) {
	userID, ok := subjectID(c)
	if !ok {
		return
	}
	blogs, err := h.blogs.ListByUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blog posts retrieved successfully", blogs)
}

// GET /blog/:id
func (h *BlogHandler) Get(c *gin.Context) {
	blog, err := h.blogs.Get(requestContext(c), pathID(c, "id"), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blog post retrieved successfully", blog)
}

// PUT /blog/:id
func (h *BlogHandler) Update(c *gin.Context) {
	userID, ok := subjectID(c)
	if !ok {
		return
	}
	var req blogRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var files uploadSet
	defer files.Close()
	images, err := files.all(c, "images")
	if err != nil {
		response.Error(c, err)
		return
	}

	blog, err := h.blogs.Update(requestContext(c), userID, pathID(c, "id"), req.input(), images)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blog post updated and sent for approval", blog)
}

// DELETE /blog/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	userID, ok := subjectID(c)
	if !ok {
		return
	}
	if err := h.blogs.Delete(requestContext(c), userID, pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blog post deleted successfully", nil)
}

// PUT /blog/admin/:id/approve
func (h *BlogHandler) Approve(c *gin.Context) {
	adminID, ok := subjectID(c)
	if !ok {
		return
	}
	blog, err := h.blogs.Approve(requestContext(c), adminID, pathID(c, "id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blog post approved", blog)
}

// PUT /blog/admin/:id/reject
func (h *BlogHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	blog, err := h.blogs.Reject(requestContext(c), pathID(c, "id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blog post rejected", blog)
}

// DELETE /blog/admin/:id
func (h *BlogHandler) AdminDelete(c *gin.Context) {
	if err := h.blogs.AdminDelete(requestContext(c), pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blog post deleted successfully", nil)
}

// sortDirection accepts asc/desc as well as the numeric 1/-1 form.
func sortDirection(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "asc", "1":
		return "asc"
	default:
		return "desc"
	}
}
