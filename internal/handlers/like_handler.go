package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/anonto42/blog-api/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// LikeHandler handles like-related HTTP requests
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	metrics        *metrics.Metrics
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, m *metrics.Metrics) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
		userRepository: userRepo,
		metrics:        m,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("", h.LikePost)
	g.GET("", h.GetLikes)
	g.GET("/post/:id", h.GetPostLikes)
	g.DELETE("/delete/:id", h.DeleteLike)
}

// LikePost records a like. The unique (user, post) index decides
// duplicates, so concurrent requests still yield a single row.
func (h *LikeHandler) LikePost(c echo.Context) error {
	var req models.CreateLikeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	postExists, err := h.postRepository.Exists(ctx, req.PostID)
	if err != nil {
		return internalError(err)
	}
	if !postExists {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	userExists, err := h.userRepository.Exists(ctx, req.UserID)
	if err != nil {
		return internalError(err)
	}
	if !userExists {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	like := &models.Like{UserID: req.UserID, PostID: req.PostID}
	if err := h.likeRepository.CreateLike(ctx, like); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			h.metrics.Conflict("like")
			return echo.NewHTTPError(http.StatusBadRequest, "You have already liked this post")
		case errors.Is(err, repositories.ErrMissingReference):
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return internalError(err)
	}

	h.metrics.Created("like")
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Post liked successfully",
		"like":    like,
	})
}

func (h *LikeHandler) GetPostLikes(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	likes, err := h.likeRepository.GetLikesByPostID(c.Request().Context(), postID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Likes retrieved successfully",
		"totalLikes": len(likes),
		"likes":      likes,
	})
}

func (h *LikeHandler) GetLikes(c echo.Context) error {
	likes, err := h.likeRepository.GetLikes(c.Request().Context())
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Likes retrieved successfully",
		"totalLikes": len(likes),
		"likes":      likes,
	})
}

func (h *LikeHandler) DeleteLike(c echo.Context) error {
	id, err := parseID(c, "id", "like")
	if err != nil {
		return err
	}
	if err := h.likeRepository.DeleteLike(c.Request().Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Like not found")
		}
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Like deleted successfully"})
}
