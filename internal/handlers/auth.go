package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/blog-api/backend/internal/auth"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/anonto42/blog-api/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	userRepository repositories.UserRepository
	credentials    *auth.Credentials
	metrics        *metrics.Metrics
	log            *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, creds *auth.Credentials, m *metrics.Metrics, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		credentials:    creds,
		metrics:        m,
		log:            log,
	}
}

// RegisterAuthRoutes registers the public authentication routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

// Register creates an account and returns a token for it.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	hashed, err := h.credentials.HashPassword(req.Password)
	if err != nil {
		return internalError(err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
	}
	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			h.metrics.Conflict("user")
			return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
		}
		return internalError(err)
	}

	token, err := h.credentials.IssueToken(user.ID)
	if err != nil {
		return internalError(err)
	}

	h.metrics.Registered()
	h.log.WithField("user_id", user.ID).Info("user registered")
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    user.ToSummary(),
		"token":   token,
	})
}

// Login exchanges an email and password for a token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.metrics.AuthFailed("unknown_email")
			return echo.NewHTTPError(http.StatusBadRequest, "User not found")
		}
		return internalError(err)
	}

	if err := h.credentials.ComparePassword(user.Password, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.AuthFailed("bad_password")
			h.log.WithField("user_id", user.ID).Warn("login with wrong password")
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
		}
		return internalError(err)
	}

	token, err := h.credentials.IssueToken(user.ID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User logged in successfully",
		"user":    user.ToSummary(),
		"token":   token,
	})
}
