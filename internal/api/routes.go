package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docregistry/internal/api/handlers"
	"github.com/docregistry/internal/api/middleware"
	"github.com/docregistry/internal/config"
	"github.com/docregistry/internal/services"
)

type Router struct {
	engine         *gin.Engine
	logger         *zap.Logger
	authHandler    *handlers.AuthHandler
	docHandler     *handlers.DocumentHandler
	deptHandler    *handlers.DepartmentHandler
	unitHandler    *handlers.UnitHandler
	commentHandler *handlers.CommentHandler
	authMiddleware *middleware.AuthMiddleware
	reqMiddleware  *middleware.RequestMiddleware
	loginLimiter   *middleware.LoginRateLimiter
}

func NewRouter(
	logger *zap.Logger,
	cfg *config.Configuration,
	users *services.UserService,
	docs *services.DocumentService,
	access *services.AccessService,
	tokens *services.TokenService,
	db *gorm.DB,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger)
	authMiddleware := middleware.NewAuthMiddleware(tokens, users, logger)
	loginLimiter := middleware.NewLoginRateLimiter(access, logger)

	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())
	engine.Use(reqMiddleware.Metrics())

	return &Router{
		engine:         engine,
		logger:         logger,
		authHandler:    handlers.NewAuthHandler(users, access, tokens, db, cfg.Auth, logger),
		docHandler:     handlers.NewDocumentHandler(docs, access, logger),
		deptHandler:    handlers.NewDepartmentHandler(db, logger),
		unitHandler:    handlers.NewUnitHandler(db, logger),
		commentHandler: handlers.NewCommentHandler(db, access, logger),
		authMiddleware: authMiddleware,
		reqMiddleware:  reqMiddleware,
		loginLimiter:   loginLimiter,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "docregistry"})
	})
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Unauthenticated surface: registration, login and the public
	// publicity-document listing.
	r.engine.POST("/api/auth/register", r.authHandler.Register)
	r.engine.POST("/api/auth/login", r.loginLimiter.Limit(), r.authHandler.Login)
	r.engine.GET("/api/public/documents", r.docHandler.ListPublic)

	authorized := r.engine.Group("/api")
	authorized.Use(r.authMiddleware.RequireAuth())
	{
		authorized.POST("/auth/logout", r.authHandler.Logout)
		authorized.PUT("/users/me", r.authHandler.UpdateProfile)

		authorized.POST("/documents", r.docHandler.Upload)
		authorized.GET("/documents", r.docHandler.List)
		authorized.GET("/documents/:id", r.docHandler.GetByID)
		authorized.PUT("/documents/:id", r.docHandler.Update)
		authorized.DELETE("/documents/:id", r.docHandler.Delete)

		authorized.GET("/documents/:id/comments", r.commentHandler.ListForDocument)
		authorized.POST("/documents/:id/comments", r.commentHandler.Create)
		authorized.PUT("/comments/:commentId", r.commentHandler.Update)
		authorized.DELETE("/comments/:commentId", r.commentHandler.Delete)

		authorized.GET("/departments", r.deptHandler.List)
		authorized.GET("/departments/:id", r.deptHandler.GetByID)
		authorized.GET("/units", r.unitHandler.List)
		authorized.GET("/units/:id", r.unitHandler.GetByID)
	}

	admin := r.engine.Group("/api/admin")
	admin.Use(r.authMiddleware.RequireAuth(), r.authMiddleware.RequireAdmin())
	{
		admin.POST("/departments", r.deptHandler.Create)
		admin.PUT("/departments/:id", r.deptHandler.Update)
		admin.DELETE("/departments/:id", r.deptHandler.Delete)

		admin.POST("/units", r.unitHandler.Create)
		admin.PUT("/units/:id", r.unitHandler.Update)
		admin.DELETE("/units/:id", r.unitHandler.Delete)

		admin.POST("/login-blocks/:client/reset", r.authHandler.ResetLoginBlock)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	r.logger.Info("Starting HTTP server", zap.String("address", addr))
	return r.engine.Run(addr)
}
