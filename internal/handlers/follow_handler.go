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

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	metrics          *metrics.Metrics
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, m *metrics.Metrics) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		metrics:          m,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("", h.FollowUser)
	g.DELETE("/unfollow", h.UnfollowUser)
	g.GET("/followers/:userId", h.GetFollowers)
	g.GET("/following/:userId", h.GetFollowing)
}

// FollowUser creates the edge follower -> following. Self edges are refused
// before any lookup, so they fail even for ids that do not exist.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	var req models.FollowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.FollowerID == req.FollowingID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	ctx := c.Request().Context()
	if err := h.requireUsers(c, req.FollowerID, req.FollowingID); err != nil {
		return err
	}

	follow := &models.Follow{FollowerID: req.FollowerID, FollowingID: req.FollowingID}
	if err := h.followRepository.CreateFollow(ctx, follow); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			h.metrics.Conflict("follow")
			return echo.NewHTTPError(http.StatusBadRequest, "Already following this user")
		case errors.Is(err, repositories.ErrMissingReference):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(err)
	}

	h.metrics.Created("follow")
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Followed successfully",
		"follow":  follow,
	})
}

// UnfollowUser takes the pair from the JSON body, like FollowUser. A missing
// edge answers 400 whether or not the users exist; edges cannot outlive
// their users, so no separate user lookup is needed.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	var req models.FollowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.followRepository.DeleteFollow(c.Request().Context(), req.FollowerID, req.FollowingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Not following this user")
		}
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Unfollowed successfully"})
}

// GetFollowers lists the users following userId.
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := parseID(c, "userId", "user")
	if err != nil {
		return err
	}
	if err := h.requireUsers(c, userID); err != nil {
		return err
	}

	followers, err := h.followRepository.GetFollowers(c.Request().Context(), userID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":        "Followers fetched successfully",
		"success":        true,
		"totalFollowers": len(followers),
		"followers":      followers,
	})
}

// GetFollowing lists the users userId follows.
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := parseID(c, "userId", "user")
	if err != nil {
		return err
	}
	if err := h.requireUsers(c, userID); err != nil {
		return err
	}

	following, err := h.followRepository.GetFollowing(c.Request().Context(), userID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":        "Following fetched successfully",
		"success":        true,
		"totalFollowing": len(following),
		"following":      following,
	})
}

func (h *FollowHandler) requireUsers(c echo.Context, ids ...uint) error {
	for _, id := range ids {
		exists, err := h.userRepository.Exists(c.Request().Context(), id)
		if err != nil {
			return internalError(err)
		}
		if !exists {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
	}
	return nil
}
