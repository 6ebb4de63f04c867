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

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	pictures       *PictureStore
	metrics        *metrics.Metrics
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, pictures *PictureStore, m *metrics.Metrics) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		pictures:       pictures,
		metrics:        m,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/create", h.CreatePost)
	g.GET("/post/:postId", h.GetPost)
	g.GET("/user/:userId", h.GetUserPosts)
	g.PUT("/update/:postId", h.UpdatePost)
	g.DELETE("/delete/:postId", h.DeletePost)
	g.POST("/:postId/picture", h.UploadPostPicture)
	g.GET("/:postId/picture", h.DownloadPostPicture)
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	exists, err := h.userRepository.Exists(ctx, req.UserID)
	if err != nil {
		return internalError(err)
	}
	if !exists {
		return echo.NewHTTPError(http.StatusBadRequest, "User does not exist")
	}

	post := &models.Post{
		Title:   req.Title,
		Content: req.Content,
		UserID:  req.UserID,
	}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrMissingReference) {
			return echo.NewHTTPError(http.StatusBadRequest, "User does not exist")
		}
		return internalError(err)
	}

	h.metrics.Created("post")
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Post created successfully",
		"post":    post,
	})
}

// GetPost returns the post with its author, comments and likes.
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseID(c, "postId", "post")
	if err != nil {
		return err
	}
	post, err := h.postRepository.GetPostDetail(c.Request().Context(), id)
	if err != nil {
		return postLookupError(err, http.StatusNotFound, "Post not found")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Post retrieved successfully",
		"post":    post,
	})
}

// GetUserPosts lists the posts written by one user, newest first.
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID, err := parseID(c, "userId", "user")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	exists, err := h.userRepository.Exists(ctx, userID)
	if err != nil {
		return internalError(err)
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	posts, err := h.postRepository.GetPostsByUser(ctx, userID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Posts retrieved successfully",
		"totalPosts": len(posts),
		"posts":      posts,
	})
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := parseID(c, "postId", "post")
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return postLookupError(err, http.StatusBadRequest, "Post does not exist")
	}

	post.Title = req.Title
	post.Content = req.Content
	if err := h.postRepository.UpdatePost(ctx, post); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Post updated successfully",
		"post":    post,
	})
}

// DeletePost removes the post; its comments and likes cascade.
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := parseID(c, "postId", "post")
	if err != nil {
		return err
	}
	if err := h.postRepository.DeletePost(c.Request().Context(), id); err != nil {
		return postLookupError(err, http.StatusBadRequest, "Post does not exist")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

func (h *PostHandler) UploadPostPicture(c echo.Context) error {
	id, err := parseID(c, "postId", "post")
	if err != nil {
		return err
	}
	fh, err := h.pictures.formFile(c, "postPicture")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	exists, err := h.postRepository.Exists(ctx, id)
	if err != nil {
		return internalError(err)
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	file, err := h.pictures.save(c, fh)
	if err != nil {
		return err
	}
	if err := h.postRepository.SetPostPicture(ctx, id, file.Filename); err != nil {
		return postLookupError(err, http.StatusNotFound, "Post not found")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Post picture uploaded successfully",
		"file":    file,
	})
}

// DownloadPostPicture answers 400, not 404, when the post exists but has no
// picture attached.
func (h *PostHandler) DownloadPostPicture(c echo.Context) error {
	id, err := parseID(c, "postId", "post")
	if err != nil {
		return err
	}
	post, err := h.postRepository.GetPostByID(c.Request().Context(), id)
	if err != nil {
		return postLookupError(err, http.StatusNotFound, "Post not found")
	}
	if post.PostPicture == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Post does not have a postPicture")
	}
	return h.pictures.send(c, post.PostPicture, "Post picture file not found")
}

func postLookupError(err error, notFoundStatus int, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(notFoundStatus, msg)
	}
	return internalError(err)
}
