package handlers

import (
	"net/http"

	"github.com/anonto42/blog-api/backend/internal/middleware"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the posts written by the users someone follows.
type FeedHandler struct {
	postRepository   repositories.PostRepository
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, followRepo repositories.FollowRepository) *FeedHandler {
	return &FeedHandler{
		postRepository:   postRepo,
		userRepository:   userRepo,
		followRepository: followRepo,
	}
}

// RegisterFeedRoutes registers feed routes on the posts group
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("", h.GetMyFeed)
	g.GET("/:userId", h.GetFeed)
}

// GetMyFeed is GetFeed for the authenticated user.
func (h *FeedHandler) GetMyFeed(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "No token provided")
	}
	return h.feed(c, userID)
}

func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID, err := parseID(c, "userId", "user")
	if err != nil {
		return err
	}
	return h.feed(c, userID)
}

// feed returns nothing for a user who follows nobody; there is no global
// fallback.
func (h *FeedHandler) feed(c echo.Context, userID uint) error {
	ctx := c.Request().Context()
	exists, err := h.userRepository.Exists(ctx, userID)
	if err != nil {
		return internalError(err)
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	followed, err := h.followRepository.GetFollowingIDs(ctx, userID)
	if err != nil {
		return internalError(err)
	}
	posts, err := h.postRepository.GetFeed(ctx, followed)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Posts retrieved successfully",
		"totalPosts": len(posts),
		"posts":      posts,
	})
}
