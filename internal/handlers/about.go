package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/services"
	"github.com/sitecms/sitecms/pkg/response"
)

// imageField is the multipart field carrying the picture of an about-page entry.
const imageField = "image"

// AboutHandler serves testimonials, team members and companies.
type AboutHandler struct {
	testimonials *services.TestimonialService
	team         *services.TeamMemberService
	companies    *services.CompanyService
}

func NewAboutHandler(testimonials *services.TestimonialService, team *services.TeamMemberService, companies *services.CompanyService) *AboutHandler {
	return &AboutHandler{testimonials: testimonials, team: team, companies: companies}
}

type testimonialRequest struct {
	Name        string `json:"name" form:"name"`
	Designation string `json:"designation" form:"designation"`
	Content     string `json:"content" form:"content"`
}

type teamMemberRequest struct {
	Name     string `json:"name" form:"name"`
	Role     string `json:"role" form:"role"`
	Bio      string `json:"bio" form:"bio"`
	LinkedIn string `json:"linkedin" form:"linkedin"`
}

type companyRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

// withImage binds the request body and the optional image, then hands both to fn.
func withImage[T any](c *gin.Context, fn func(req T, image *services.Upload) (any, error)) (any, bool) {
	var req T
	if !bindAndValidate(c, &req) {
		return nil, false
	}

	var files uploadSet
	defer files.Close()
	image, err := files.single(c, imageField)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}

	result, err := fn(req, image)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return result, true
}

// POST /about/testimonials
func (h *AboutHandler) CreateTestimonial(c *gin.Context) {
	result, ok := withImage(c, func(req testimonialRequest, image *services.Upload) (any, error) {
		return h.testimonials.Create(requestContext(c), services.TestimonialInput(req), image)
	})
	if ok {
		response.Success(c, http.StatusCreated, "Testimonial created successfully", result)
	}
}

// GET /about/testimonials
func (h *AboutHandler) ListTestimonials(c *gin.Context) {
	testimonials, err := h.testimonials.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Testimonials retrieved successfully", testimonials)
}

// PUT /about/testimonials/:id
func (h *AboutHandler) UpdateTestimonial(c *gin.Context) {
	result, ok := withImage(c, func(req testimonialRequest, image *services.Upload) (any, error) {
		return h.testimonials.Update(requestContext(c), pathID(c, "id"), services.TestimonialInput(req), image)
	})
	if ok {
		response.Success(c, http.StatusOK, "Testimonial updated successfully", result)
	}
}

// DELETE /about/testimonials/:id
func (h *AboutHandler) DeleteTestimonial(c *gin.Context) {
	if err := h.testimonials.Delete(requestContext(c), pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Testimonial deleted successfully", nil)
}

// POST /about/team
func (h *AboutHandler) CreateTeamMember(c *gin.Context) {
	result, ok := withImage(c, func(req teamMemberRequest, photo *services.Upload) (any, error) {
		return h.team.Create(requestContext(c), services.TeamMemberInput(req), photo)
	})
	if ok {
		response.Success(c, http.StatusCreated, "Team member created successfully", result)
	}
}

// GET /about/team
func (h *AboutHandler) ListTeamMembers(c *gin.Context) {
	members, err := h.team.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Team members retrieved successfully", members)
}

// PUT /about/team/:id
func (h *AboutHandler) UpdateTeamMember(c *gin.Context) {
	result, ok := withImage(c, func(req teamMemberRequest, photo *services.Upload) (any, error) {
		return h.team.Update(requestContext(c), pathID(c, "id"), services.TeamMemberInput(req), photo)
	})
	if ok {
		response.Success(c, http.StatusOK, "Team member updated successfully", result)
	}
}

// DELETE /about/team/:id
func (h *AboutHandler) DeleteTeamMember(c *gin.Context) {
	if err := h.team.Delete(requestContext(c), pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Team member deleted successfully", nil)
}

// POST /about/companies
func (h *AboutHandler) CreateCompany(c *gin.Context) {
	result, ok := withImage(c, func(req companyRequest, logo *services.Upload) (any, error) {
		return h.companies.Create(requestContext(c), services.CompanyInput(req), logo)
	})
	if ok {
		response.Success(c, http.StatusCreated, "Company created successfully", result)
	}
}

// GET /about/companies
func (h *AboutHandler) ListCompanies(c *gin.Context) {
	companies, err := h.companies.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Companies retrieved successfully", companies)
}

// PUT /about/companies/:id
func (h *AboutHandler) UpdateCompany(c *gin.Context) {
	result, ok := withImage(c, func(req companyRequest, logo *services.Upload) (any, error) {
		return h.companies.Update(requestContext(c), pathID(c, "id"), services.CompanyInput(req), logo)
	})
	if ok {
		response.Success(c, http.StatusOK, "Company updated successfully", result)
	}
}

// DELETE /about/companies/:id
func (h *AboutHandler) DeleteCompany(c *gin.Context) {
	if err := h.companies.Delete(requestContext(c), pathID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Company deleted successfully", nil)
}
