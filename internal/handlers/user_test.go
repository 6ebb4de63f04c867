package handlers_test

import (
	"net/http"
	"testing"

	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLookups(t *testing.T) {
	s := newTestServer(t)
	aliceID, token := s.register("Alice", "alice@example.com")
	s.register("Bob", "bob@example.com")

	rec := s.do(http.MethodGet, "/api/users", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["totalUsers"])
	for _, u := range body["users"].([]any) {
		assert.NotContains(t, u, "password")
	}

	rec = s.do(http.MethodGet, "/api/users/getUserByEmail/bob@example.com", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bob", decode(t, rec)["name"])

	rec = s.do(http.MethodGet, "/api/users/getUserByName/Alice", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(aliceID), decode(t, rec)["id"])

	rec = s.do(http.MethodGet, "/api/users/getUserByName/Nobody", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found", message(t, rec))

	rec = s.do(http.MethodGet, "/api/users/getUserById/999", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/getUserById/abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid user ID", message(t, rec))
}

func TestGetUserByIDIncludesProfile(t *testing.T) {
	s := newTestServer(t)
	aliceID, token := s.register("Alice", "alice@example.com")
	bobID, _ := s.register("Bob", "bob@example.com")
	s.createPost(token, aliceID, "hello")
	require.Equal(t, http.StatusCreated, s.follow(token, bobID, aliceID).Code)

	rec := s.do(http.MethodGet, "/api/users/getUserById/"+itoa(aliceID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)

	assert.NotContains(t, body, "password")
	assert.Len(t, body["posts"], 1)
	followers := body["followers"].([]any)
	require.Len(t, followers, 1)
	follower := followers[0].(map[string]any)["follower"].(map[string]any)
	assert.Equal(t, "Bob", follower["name"])
	assert.NotContains(t, follower, "password")
}

func TestSearchUsers(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register("Alice", "alice@example.com")
	s.register("Bob", "bob@other.org")

	rec := s.do(http.MethodGet, "/api/users/search?email=example", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["totalUsers"])

	rec = s.do(http.MethodGet, "/api/users/search", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email query parameter is required", message(t, rec))

	rec = s.do(http.MethodGet, "/api/users/search?email=zzz", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No users found", message(t, rec))

	rec = s.do(http.MethodGet, "/api/users/search?email=%25", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUser(t *testing.T) {
	s := newTestServer(t)
	aliceID, token := s.register("Alice", "alice@example.com")
	s.register("Bob", "bob@example.com")

	rec := s.do(http.MethodPut, "/api/users/update/"+itoa(aliceID), map[string]string{
		"email": "bob@example.com",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already in use", message(t, rec))

	rec = s.do(http.MethodPut, "/api/users/update/"+itoa(aliceID), map[string]string{
		"name": "Alicia", "password": "newpass99",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "Alicia", user["name"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "password")

	rec = s.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "newpass99",
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code, "a changed password is hashed and usable for login")

	rec = s.do(http.MethodPut, "/api/users/update/999", map[string]string{"name": "Ghost"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found", message(t, rec))

	rec = s.do(http.MethodPut, "/api/users/update/"+itoa(aliceID), map[string]string{"name": "N0pe"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestServer(t)
	aliceID, token := s.register("Alice", "alice@example.com")
	bobID, _ := s.register("Bob", "bob@example.com")
	carolID, _ := s.register("Carol", "carol@example.com")

	alicePost := s.createPost(token, aliceID, "alice post")
	bobPost := s.createPost(token, bobID, "bob post")

	// Bob engages with Alice's post; Alice engages with Bob's.
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/comments/create", map[string]any{
		"content": "nice", "postId": alicePost, "userId": bobID,
	}, token).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/comments/create", map[string]any{
		"content": "thanks", "postId": bobPost, "userId": aliceID,
	}, token).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/likes", map[string]any{
		"postId": alicePost, "userId": bobID,
	}, token).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/likes", map[string]any{
		"postId": bobPost, "userId": aliceID,
	}, token).Code)
	require.Equal(t, http.StatusCreated, s.follow(token, aliceID, bobID).Code)
	require.Equal(t, http.StatusCreated, s.follow(token, bobID, aliceID).Code)
	require.Equal(t, http.StatusCreated, s.follow(token, carolID, bobID).Code)

	rec := s.do(http.MethodDelete, "/api/users/delete/"+itoa(aliceID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "User deleted successfully", message(t, rec))

	assert.Equal(t, int64(2), s.count(&models.User{}))
	assert.Equal(t, int64(1), s.count(&models.Post{}), "only Bob's post survives")
	assert.Equal(t, int64(0), s.count(&models.Comment{}), "comments on and by Alice are gone")
	assert.Equal(t, int64(0), s.count(&models.Like{}), "likes on and by Alice are gone")
	assert.Equal(t, int64(1), s.count(&models.Follow{}), "only Carol -> Bob remains")

	rec = s.do(http.MethodDelete, "/api/users/delete/"+itoa(aliceID), nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found", message(t, rec))
}
