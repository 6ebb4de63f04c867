package router

import (
	"github.com/anonto42/blog-api/backend/internal/auth"
	"github.com/anonto42/blog-api/backend/internal/handlers"
	"github.com/anonto42/blog-api/backend/internal/middleware"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/anonto42/blog-api/backend/pkg/config"
	"github.com/anonto42/blog-api/backend/pkg/metrics"
	"github.com/anonto42/blog-api/backend/pkg/storage"
	"github.com/anonto42/blog-api/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	DB          *gorm.DB
	Blobs       storage.BlobStore
	Credentials *auth.Credentials
	Metrics     *metrics.Metrics
	Log         *logrus.Logger
	Config      *config.Config
	RateLimiter *middleware.RateLimiter
}

// New builds a fully wired echo instance.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(d.Log)
	e.IPExtractor = config.IPExtractor(d.Config)

	SetupMiddleware(e, d)
	SetupRoutes(e, d)
	return e
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, d Deps) {
	config.SetupMiddleware(e, d.Log, d.Config)
	e.Use(d.Metrics.Middleware())
	if d.RateLimiter != nil {
		e.Use(d.RateLimiter.Middleware())
	}
	d.Log.Debug("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", handlers.Index)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(d.DB)
	postRepo := repositories.NewPostgresPostRepository(d.DB)
	commentRepo := repositories.NewPostgresCommentRepository(d.DB)
	likeRepo := repositories.NewPostgresLikeRepository(d.DB)
	followRepo := repositories.NewPostgresFollowRepository(d.DB)

	pictures := handlers.NewPictureStore(d.Blobs, d.Config.MaxUploadSize)

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(userRepo, d.Credentials, d.Metrics, d.Log)
	authHandler.RegisterAuthRoutes(e.Group("/api/auth"))

	// --- Protected routes ---
	api := e.Group("/api", middleware.JWTAuthMiddleware(d.Config.AuthHeader, d.Credentials, d.Metrics, d.Log))

	handlers.NewUserHandler(userRepo, d.Credentials, pictures).RegisterUserRoutes(api.Group("/users"))

	posts := api.Group("/posts")
	handlers.NewPostHandler(postRepo, userRepo, pictures, d.Metrics).RegisterPostRoutes(posts)
	handlers.NewFeedHandler(postRepo, userRepo, followRepo).RegisterFeedRoutes(posts)

	handlers.NewCommentHandler(commentRepo, postRepo, userRepo, d.Metrics).RegisterCommentRoutes(api.Group("/comments"))
	handlers.NewLikeHandler(likeRepo, postRepo, userRepo, d.Metrics).RegisterLikeRoutes(api.Group("/likes"))
	handlers.NewFollowHandler(followRepo, userRepo, d.Metrics).RegisterFollowRoutes(api.Group("/follow"))

	d.Log.WithField("routes", len(e.Routes())).Info("routes configured")
}
