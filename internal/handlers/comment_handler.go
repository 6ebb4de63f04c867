package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/anonto42/blog-api/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	metrics           *metrics.Metrics
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, m *metrics.Metrics) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		metrics:           m,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/create", h.CreateComment)
	g.GET("/post/:postId", h.GetCommentsByPost)
	g.GET("", h.GetComments)
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userExists, err := h.userRepository.Exists(ctx, req.UserID)
	if err != nil {
		return internalError(err)
	}
	if !userExists {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	postExists, err := h.postRepository.Exists(ctx, req.PostID)
	if err != nil {
		return internalError(err)
	}
	if !postExists {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	comment := &models.Comment{
		Content: req.Content,
		UserID:  req.UserID,
		PostID:  req.PostID,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrMissingReference) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return internalError(err)
	}

	h.metrics.Created("comment")
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

// GetCommentsByPost answers 400 when the post does not exist.
func (h *CommentHandler) GetCommentsByPost(c echo.Context) error {
	postID, err := parseID(c, "postId", "post")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	exists, err := h.postRepository.Exists(ctx, postID)
	if err != nil {
		return internalError(err)
	}
	if !exists {
		return echo.NewHTTPError(http.StatusBadRequest, "Post not found")
	}

	comments, err := h.commentRepository.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":          "Comments retrieved successfully",
		"numberOfComments": len(comments),
		"comments":         comments,
	})
}

func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.commentRepository.GetComments(c.Request().Context())
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":          "Comments retrieved successfully",
		"numberOfComments": len(comments),
		"comments":         comments,
	})
}
