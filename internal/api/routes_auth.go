package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sitecms/sitecms/internal/handlers"
)

func registerUserRoutes(r *gin.Engine, g guards, h *handlers.UserAuthHandler) {
	user := r.Group("/user")
	{
		user.POST("/register", g.auth, h.Register)
		user.POST("/login", g.auth, h.Login)
		user.POST("/logout", h.Logout)
		user.POST("/verify-otp", g.auth, h.VerifyOTP)
		user.POST("/resend-otp", g.auth, h.ResendOTP)
		user.GET("/profile", g.user, h.Profile)
		user.GET("/validate", g.user, h.Validate)
	}

	// Root-level aliases used by the verification page.
	r.POST("/verify-otp", g.auth, h.VerifyOTP)
	r.POST("/resend-otp", g.auth, h.ResendOTP)
}

func registerAdminRoutes(r *gin.Engine, g guards, h *handlers.AdminAuthHandler) {
	admin := r.Group("/admin")
	{
		admin.POST("/login", g.auth, h.Login)
		admin.POST("/logout", h.Logout)
		admin.GET("/profile", g.admin, h.Profile)
		admin.POST("/register", g.admin, h.Register)
	}
}
