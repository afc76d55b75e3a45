package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/services"
	"github.com/sitecms/sitecms/pkg/response"
)

// CommentHandler exposes comments on blog posts and their moderation.
type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type commentRequest struct {
	Content string `json:"content" form:"content"`
	BlogID  string `json:"blogId" form:"blogId"`
	PostID  string `json:"postId" form:"postId"`
}

// POST /comment
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := subjectID(c)
	if !ok {
		return
	}
	var req commentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	blogID := req.BlogID
	if strings.TrimSpace(blogID) == "" {
		blogID = req.PostID
	}

	comment, err := h.comments.Create(requestContext(c), userID, blogID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Comment submitted for approval", comment)
}

// GET /comment/post/:postId
func (h *CommentHandler) ListForPost(c *gin.Context) {
	comments, err := h.comments.ListApproved(requestContext(c), pathID(c, "postId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Comments retrieved successfully", comments)
}

// GET /comment/admin/pending
func (h *CommentHandler) ListPending(c *gin.Context) {
	comments, err := h.comments.ListPending(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Pending comments retrieved successfully", comments)
}

// PATCH /comment/admin/:id
func (h *CommentHandler) Approve(c *gin.Context) {
	adminID, ok := subjectID(c)
	if !ok {
		return
	}
	comment, err := h.comments.Approve(requestContext(c), adminID, pathID(c, "id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Comment approved", comment)
}

// DELETE /comment/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := subjectID(c)
	if !ok {
		return
	}
	if err := h.comments.Delete(requestContext(c), userID, pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Comment deleted successfully", nil)
}

// DELETE /comment/admin/:id
func (h *CommentHandler) AdminDelete(c *gin.Context) {
	if err := h.comments.AdminDelete(requestContext(c), pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Comment deleted successfully", nil)
}
