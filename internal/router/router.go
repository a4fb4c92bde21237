package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/materiku/materiku-backend/internal/authz"
	"github.com/materiku/materiku-backend/internal/config"
	"github.com/materiku/materiku-backend/internal/handler"
	"github.com/materiku/materiku-backend/internal/middleware"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/materiku/materiku-backend/internal/repository"
	"github.com/materiku/materiku-backend/internal/response"
	"github.com/materiku/materiku-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Course    *handler.CourseHandler
	Material  *handler.MaterialHandler
	Rating    *handler.RatingHandler
	Review    *handler.ReviewHandler
	Tag       *handler.TagHandler
	AdminRole *handler.AdminRoleHandler
	AdminUser *handler.AdminUserHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	userRepo *repository.UserRepository,
	perms *authz.PermissionService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Serve uploaded files statically with aggressive caching (1 year).
	// Filenames are UUIDs, so stale content is impossible.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(authService, userRepo)
	optionalAuth := middleware.OptionalAuth(authService, userRepo)

	// Rate limiter for credential endpoints (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
		auth.GET("/me", requireAuth, handlers.Auth.Me)
		auth.PUT("/password", requireAuth, handlers.Auth.ChangePassword)
	}

	// ─── 2. Public Catalog (anonymous read) ────────────────────────────
	// Reads carry OptionalAuth: anonymous callers see the approved world,
	// authenticated ones may reach further (own pending material).
	api := router.Group("/api/v1")
	{
		api.GET("/courses", handlers.Course.List)
		api.GET("/courses/:course_id", handlers.Course.Get)
		api.GET("/courses/:course_id/materials", handlers.Material.ListApproved)
		api.GET("/materials/:material_id", optionalAuth, handlers.Material.Get)
		api.GET("/materials/:material_id/download", optionalAuth, handlers.Material.Download)
		api.GET("/materials/:material_id/rating", handlers.Rating.Summary)
		api.GET("/materials/:material_id/reviews", handlers.Review.List)
		api.GET("/materials/:material_id/tags", handlers.Tag.ListByMaterial)
		api.GET("/tags", handlers.Tag.List)
	}

	// ─── 3. Authenticated Group ────────────────────────────────────────
	// Ownership and capability checks happen in the services; the
	// middleware only establishes who is asking.
	authed := router.Group("/api/v1")
	authed.Use(requireAuth)
	{
		authed.POST("/courses", handlers.Course.Create)
		authed.PUT("/courses/:course_id", handlers.Course.Update)
		authed.DELETE("/courses/:course_id", handlers.Course.Delete)

		authed.POST("/courses/:course_id/materials", handlers.Material.Upload)
		authed.GET("/courses/:course_id/materials/pending", handlers.Material.ListPending)
		authed.GET("/me/materials", handlers.Material.ListOwn)
		authed.PUT("/materials/:material_id", handlers.Material.Update)
		authed.DELETE("/materials/:material_id", handlers.Material.Delete)
		authed.POST("/materials/:material_id/approve", handlers.Material.Approve)
		authed.POST("/materials/:material_id/reject", handlers.Material.Reject)

		authed.PUT("/materials/:material_id/rating", handlers.Rating.Rate)
		authed.DELETE("/ratings/:id", handlers.Rating.Delete)

		authed.POST("/materials/:material_id/reviews", handlers.Review.Create)
		authed.DELETE("/reviews/:id", handlers.Review.Delete)

		authed.POST("/tags", handlers.Tag.Create)
		authed.DELETE("/tags/:id", handlers.Tag.Delete)
		authed.POST("/materials/:material_id/tags", handlers.Tag.Attach)
		authed.DELETE("/materials/:material_id/tags/:tag_id", handlers.Tag.Detach)
	}

	// ─── 4. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(requireAuth)
	{
		ws.GET("/courses/:course_id/moderation", handlers.WS.ModerationStream)
	}

	// ─── 5. Admin Group (capability gated) ─────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(requireAuth)
	{
		adminAPI.GET("/capabilities",
			middleware.RequireAnyCapability(perms, model.CapabilityRolesRead, model.CapabilityRolesWrite),
			handlers.AdminRole.ListCapabilities,
		)

		adminAPI.GET("/roles",
			middleware.RequireCapability(perms, model.CapabilityRolesRead),
			handlers.AdminRole.List,
		)
		adminAPI.GET("/roles/:id",
			middleware.RequireCapability(perms, model.CapabilityRolesRead),
			handlers.AdminRole.Get,
		)
		adminAPI.POST("/roles",
			middleware.RequireCapability(perms, model.CapabilityRolesWrite),
			handlers.AdminRole.Create,
		)
		adminAPI.PUT("/roles/:id",
			middleware.RequireCapability(perms, model.CapabilityRolesWrite),
			handlers.AdminRole.Update,
		)
		adminAPI.DELETE("/roles/:id",
			middleware.RequireCapability(perms, model.CapabilityRolesWrite),
			handlers.AdminRole.Delete,
		)

		adminAPI.GET("/users",
			middleware.RequireCapability(perms, model.CapabilityUsersRead),
			handlers.AdminUser.List,
		)
		adminAPI.GET("/users/:id",
			middleware.RequireCapability(perms, model.CapabilityUsersRead),
			handlers.AdminUser.Get,
		)
		adminAPI.POST("/users/:id/roles",
			middleware.RequireCapability(perms, model.CapabilityUsersManageRoles),
			handlers.AdminUser.GrantRole,
		)
		adminAPI.DELETE("/users/:id/roles/:role_id",
			middleware.RequireCapability(perms, model.CapabilityUsersManageRoles),
			handlers.AdminUser.RevokeRole,
		)
	}

	return router
}
