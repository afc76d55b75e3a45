package api

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/app"
	iauth "github.com/sitecms/sitecms/internal/auth"
	"github.com/sitecms/sitecms/internal/handlers"
	"github.com/sitecms/sitecms/internal/middleware"
	"github.com/sitecms/sitecms/internal/monitoring"
	"github.com/sitecms/sitecms/internal/services"
	"github.com/sitecms/sitecms/pkg/storage"
)

// Dependencies bundles everything the router needs.
type Dependencies struct {
	DB          *gorm.DB
	Config      *app.Config
	Services    *services.Registry
	UserRealm   *iauth.Realm
	AdminRealm  *iauth.Realm
	Revocations *iauth.Revocations
	RateStore   middleware.RateStore
	Storage     storage.Storage
	Health      *monitoring.Health
}

func (d Dependencies) validate() error {
	switch {
	case d.DB == nil:
		return errors.New("router: database handle must be provided")
	case d.Config == nil:
		return errors.New("router: config must be provided")
	case d.Services == nil:
		return errors.New("router: services must be provided")
	case d.UserRealm == nil || d.AdminRealm == nil:
		return errors.New("router: user and admin realms must be provided")
	}
	return nil
}

// healthChecks falls back to a database-only readiness probe.
func (d Dependencies) healthChecks() *monitoring.Health {
	if d.Health != nil {
		return d.Health
	}
	return monitoring.NewHealth(d.Config.Monitoring.Health.Timeout).Ready(monitoring.Database(d.DB))
}

// guards are the session middlewares shared by the route groups.
type guards struct {
	user  gin.HandlerFunc
	admin gin.HandlerFunc
	auth  gin.HandlerFunc
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	cfg := deps.Config
	svc := deps.Services

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(cfg.Server.IsProduction()))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.OriginGuard(cfg.CORS.AllowedOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxUploadMB << 20))
	r.Use(middleware.RateLimit(deps.RateStore, cfg.RateLimit.Requests, cfg.RateLimit.Window, "api"))

	g := guards{
		user: middleware.RequireSession(deps.UserRealm, deps.Revocations, func(ctx context.Context, id string) (any, error) {
			return svc.Users.GetByID(ctx, id)
		}),
		admin: middleware.RequireSession(deps.AdminRealm, deps.Revocations, func(ctx context.Context, id string) (any, error) {
			return svc.Admins.GetByID(ctx, id)
		}),
		auth: middleware.RateLimit(deps.RateStore, cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow, "auth"),
	}

	registerHealthRoutes(r, deps.healthChecks())
	registerUserRoutes(r, g, handlers.NewUserAuthHandler(svc.Users, svc.OTP, deps.UserRealm, deps.Revocations))
	registerAdminRoutes(r, g, handlers.NewAdminAuthHandler(svc.Admins, deps.AdminRealm, deps.Revocations))
	registerBlogRoutes(r, g, handlers.NewBlogHandler(svc.Blogs))
	registerCommentRoutes(r, g, handlers.NewCommentHandler(svc.Comments))
	registerAboutRoutes(r, g, handlers.NewAboutHandler(svc.Testimonials, svc.Team, svc.Companies))
	registerWebRoutes(r, g, webHandlers{
		offerings: handlers.NewOfferingHandler(svc.Offerings),
		courses:   handlers.NewCourseHandler(svc.Courses),
		gallery:   handlers.NewGalleryHandler(svc.Gallery),
	})
	registerLeadRoutes(r, g, handlers.NewLeadHandler(svc.Leads))

	if local, ok := deps.Storage.(*storage.LocalStorage); ok {
		if mount := staticMount(local.PublicURL()); mount != "" {
			r.Static(mount, local.Root())
		}
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

// staticMount returns the path component of a local storage public URL.
func staticMount(publicURL string) string {
	u, err := url.Parse(strings.TrimSpace(publicURL))
	if err != nil {
		return ""
	}
	mount := strings.TrimRight(u.Path, "/")
	if mount == "" || !strings.HasPrefix(mount, "/") {
		return ""
	}
	return mount
}
