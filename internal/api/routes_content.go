package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/handlers"
)

func registerBlogRoutes(r *gin.Engine, g guards, h *handlers.BlogHandler) {
	blog := r.Group("/blog")
	{
		blog.GET("", h.List)
		blog.POST("", g.user, h.Create)
		blog.GET("/user", g.user, h.ListMine)
		blog.GET("/:id", h.Get)
		blog.PUT("/:id", g.user, h.Update)
		blog.DELETE("/:id", g.user, h.Delete)
	}

	admin := blog.Group("/admin", g.admin)
	{
		admin.GET("/all", h.AdminList)
		admin.PUT("/:id/approve", h.Approve)
		admin.PUT("/:id/reject", h.Reject)
		admin.DELETE("/:id", h.AdminDelete)
	}
}

func registerCommentRoutes(r *gin.Engine, g guards, h *handlers.CommentHandler) {
	comment := r.Group("/comment")
	{
		comment.POST("", g.user, h.Create)
		comment.GET("/post/:postId", h.ListForPost)
		comment.DELETE("/:id", g.user, h.Delete)
	}

	admin := comment.Group("/admin", g.admin)
	{
		admin.GET("/pending", h.ListPending)
		admin.PATCH("/:id", h.Approve)
		admin.DELETE("/:id", h.AdminDelete)
	}
}

func registerAboutRoutes(r *gin.Engine, g guards, h *handlers.AboutHandler) {
	about := r.Group("/about")
	{
		about.GET("/testimonials", h.ListTestimonials)
		about.POST("/testimonials", g.admin, h.CreateTestimonial)
		about.PUT("/testimonials/:id", g.admin, h.UpdateTestimonial)
		about.DELETE("/testimonials/:id", g.admin, h.DeleteTestimonial)

		about.GET("/team", h.ListTeamMembers)
		about.POST("/team", g.admin, h.CreateTeamMember)
		about.PUT("/team/:id", g.admin, h.UpdateTeamMember)
		about.DELETE("/team/:id", g.admin, h.DeleteTeamMember)

		about.GET("/companies", h.ListCompanies)
		about.POST("/companies", g.admin, h.CreateCompany)
		about.PUT("/companies/:id", g.admin, h.UpdateCompany)
		about.DELETE("/companies/:id", g.admin, h.DeleteCompany)
	}
}

type webHandlers struct {
	offerings *handlers.OfferingHandler
	courses   *handlers.CourseHandler
	gallery   *handlers.GalleryHandler
}

func registerWebRoutes(r *gin.Engine, g guards, h webHandlers) {
	web := r.Group("/web")
	{
		web.GET("/services", h.offerings.List)
		web.POST("/services", g.admin, h.offerings.Create)
		web.PUT("/services", g.admin, h.offerings.Update)
		web.PUT("/services/order", g.admin, h.offerings.Reorder)
		web.DELETE("/service/:id", g.admin, h.offerings.Delete)

		web.GET("/courses", h.courses.List)
		web.POST("/courses", g.admin, h.courses.Create)
		web.PUT("/courses", g.admin, h.courses.Update)
		web.PUT("/courses/order", g.admin, h.courses.Reorder)
		web.DELETE("/course/:id", g.admin, h.courses.Delete)

		web.GET("/images", h.gallery.List)
		web.POST("/images", g.admin, h.gallery.CreateBatch)
		web.PUT("/images", g.admin, h.gallery.Update)
		web.DELETE("/image/:id", g.admin, h.gallery.Delete)
	}
}

func registerLeadRoutes(r *gin.Engine, g guards, h *handlers.LeadHandler) {
	r.POST("/consult", g.auth, h.CreateConsult)
	r.GET("/consult", g.admin, h.ListConsults)
	r.DELETE("/consult/:id", g.admin, h.DeleteConsult)

	r.POST("/contact", g.auth, h.CreateContact)
	r.GET("/contact", g.admin, h.ListContacts)
	r.DELETE("/contact/:id", g.admin, h.DeleteContact)
}
