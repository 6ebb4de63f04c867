package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/blog-api/backend/internal/auth"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserHandler handles user lookup, profile updates and profile pictures.
type UserHandler struct {
	userRepository repositories.UserRepository
	credentials    *auth.Credentials
	pictures       *PictureStore
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, creds *auth.Credentials, pictures *PictureStore) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		credentials:    creds,
		pictures:       pictures,
	}
}

// RegisterUserRoutes registers user routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("", h.GetUsers)
	g.GET("/getUserById/:id", h.GetUserByID)
	g.GET("/getUserByEmail/:email", h.GetUserByEmail)
	g.GET("/getUserByName/:name", h.GetUserByName)
	g.GET("/search", h.SearchUsers)
	g.PUT("/update/:id", h.UpdateUser)
	g.DELETE("/delete/:id", h.DeleteUser)
	g.POST("/upload/profilePicture/:userId", h.UploadProfilePicture)
	g.GET("/download/profilePicture/:userId", h.DownloadProfilePicture)
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.userRepository.GetUsers(c.Request().Context())
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Users retrieved successfully",
		"totalUsers": len(users),
		"users":      users,
	})
}

// GetUserByID returns the user with their posts and both sides of their
// follow graph.
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserProfile(c.Request().Context(), id)
	if err != nil {
		return userLookupError(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUserByEmail(c echo.Context) error {
	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return userLookupError(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUserByName(c echo.Context) error {
	user, err := h.userRepository.GetUserByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return userLookupError(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, user)
}

// SearchUsers matches users whose email contains the email query parameter.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	fragment := strings.TrimSpace(c.QueryParam("email"))
	if fragment == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email query parameter is required")
	}

	users, err := h.userRepository.SearchUsersByEmail(c.Request().Context(), fragment)
	if err != nil {
		return internalError(err)
	}
	if len(users) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No users found")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Users retrieved successfully",
		"totalUsers": len(users),
		"users":      users,
	})
}

// UpdateUser changes any of name, email and password. A new password is
// hashed before it is stored.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return userLookupError(err, http.StatusBadRequest)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		hashed, err := h.credentials.HashPassword(req.Password)
		if err != nil {
			return internalError(err)
		}
		user.Password = hashed
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusBadRequest, "Email already in use")
		}
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// DeleteUser removes the user and, through the cascades, everything they own.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	if err := h.userRepository.DeleteUser(c.Request().Context(), id); err != nil {
		return userLookupError(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

func (h *UserHandler) UploadProfilePicture(c echo.Context) error {
	id, err := parseID(c, "userId", "user")
	if err != nil {
		return err
	}
	fh, err := h.pictures.formFile(c, "profilePicture")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	exists, err := h.userRepository.Exists(ctx, id)
	if err != nil {
		return internalError(err)
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "User does not exist")
	}

	file, err := h.pictures.save(c, fh)
	if err != nil {
		return err
	}
	if err := h.userRepository.SetProfilePicture(ctx, id, file.Filename); err != nil {
		return userLookupError(err, http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile picture uploaded successfully",
		"file":    file,
	})
}

func (h *UserHandler) DownloadProfilePicture(c echo.Context) error {
	id, err := parseID(c, "userId", "user")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return userLookupError(err, http.StatusNotFound)
	}
	if user.ProfilePicture == "" {
		return echo.NewHTTPError(http.StatusNotFound, "User does not have a profilePicture")
	}
	return h.pictures.send(c, user.ProfilePicture, "Profile picture file not found")
}

// userLookupError maps a missing user to notFoundStatus and anything else
// to a 500.
func userLookupError(err error, notFoundStatus int) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(notFoundStatus, "User not found")
	}
	return internalError(err)
}
