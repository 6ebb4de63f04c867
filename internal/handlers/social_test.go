package handlers_test

import (
	"net/http"
	"testing"

	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComments(t *testing.T) {
	s := newTestServer(t)
	aliceID, token := s.register("Alice", "alice@example.com")
	postID := s.createPost(token, aliceID, "post")

	rec := s.do(http.MethodPost, "/api/comments/create", map[string]any{
		"content": "hello", "postId": postID, "userId": aliceID,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode(t, rec)["comment"].(map[string]any)
	assert.Equal(t, "Alice", comment["user"].(map[string]any)["name"])
	assert.Equal(t, float64(postID), comment["post"].(map[string]any)["id"])

	rec = s.do(http.MethodPost, "/api/comments/create", map[string]any{
		"content": "x", "postId": postID, "userId": 999,
	}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", message(t, rec))

	rec = s.do(http.MethodPost, "/api/comments/create", map[string]any{
		"content": "x", "postId": 999, "userId": aliceID,
	}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", message(t, rec))

	rec = s.do(http.MethodPost, "/api/comments/create", map[string]any{"postId": postID, "userId": aliceID}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/comments/post/"+itoa(postID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["numberOfComments"])

	rec = s.do(http.MethodGet, "/api/comments/post/999", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Post not found", message(t, rec))

	rec = s.do(http.MethodGet, "/api/comments", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["numberOfComments"])
}

func TestLikes(t *testing.T) {
	s := newTestServer(t)
	aliceID, token := s.register("Alice", "alice@example.com")
	bobID, _ := s.register("Bob", "bob@example.com")
	postID := s.createPost(token, aliceID, "post")

	rec := s.do(http.MethodPost, "/api/likes", map[string]any{"userId": aliceID, "postId": 999}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", message(t, rec))

	rec = s.do(http.MethodPost, "/api/likes", map[string]any{"userId": 999, "postId": postID}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", message(t, rec))

	rec = s.do(http.MethodPost, "/api/likes", map[string]any{"userId": aliceID, "postId": postID}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	likeID := idOf(decode(t, rec)["like"])
	rec = s.do(http.MethodPost, "/api/likes", map[string]any{"userId": bobID, "postId": postID}, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/api/likes/post/"+itoa(postID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["totalLikes"])
	for _, l := range body["likes"].([]any) {
		assert.NotContains(t, l.(map[string]any)["user"], "password")
	}

	rec = s.do(http.MethodDelete, "/api/likes/delete/"+itoa(likeID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Like deleted successfully", message(t, rec))

	rec = s.do(http.MethodDelete, "/api/likes/delete/"+itoa(likeID), nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Like not found", message(t, rec))

	rec = s.do(http.MethodGet, "/api/likes", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["totalLikes"])
}

func TestSelfFollowAlwaysFails(t *testing.T) {
	s := newTestServer(t)
	aliceID, token := s.register("Alice", "alice@example.com")

	for _, id := range []uint{aliceID, 999} {
		rec := s.follow(token, id, id)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Cannot follow yourself", message(t, rec))
	}
	assert.Equal(t, int64(0), s.count(&models.Follow{}))
}

func TestFollowLifecycle(t *testing.T) {
	s := newTestServer(t)
	aliceID, token := s.register("Alice", "alice@example.com")
	bobID, _ := s.register("Bob", "bob@example.com")

	rec := s.follow(token, aliceID, 999)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", message(t, rec))

	rec = s.follow(token, aliceID, bobID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	follow := decode(t, rec)["follow"].(map[string]any)
	assert.Equal(t, "Alice", follow["follower"].(map[string]any)["name"])
	assert.Equal(t, "Bob", follow["following"].(map[string]any)["name"])

	rec = s.follow(token, aliceID, bobID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Already following this user", message(t, rec))
	assert.Equal(t, int64(1), s.count(&models.Follow{}))

	rec = s.do(http.MethodGet, "/api/follow/followers/"+itoa(bobID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	require.Equal(t, float64(1), body["totalFollowers"])
	edge := body["followers"].([]any)[0].(map[string]any)
	assert.Equal(t, "Alice", edge["follower"].(map[string]any)["name"])

	rec = s.do(http.MethodGet, "/api/follow/following/"+itoa(aliceID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	require.Equal(t, float64(1), body["totalFollowing"])
	edge = body["following"].([]any)[0].(map[string]any)
	assert.Equal(t, "Bob", edge["following"].(map[string]any)["name"])

	rec = s.do(http.MethodGet, "/api/follow/followers/"+itoa(aliceID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["totalFollowers"])

	rec = s.do(http.MethodGet, "/api/follow/following/999", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	unfollow := map[string]uint{"followerId": aliceID, "followingId": bobID}
	rec = s.do(http.MethodDelete, "/api/follow/unfollow", unfollow, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Unfollowed successfully", message(t, rec))

	rec = s.do(http.MethodDelete, "/api/follow/unfollow", unfollow, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Not following this user", message(t, rec))

	rec = s.do(http.MethodDelete, "/api/follow/unfollow", map[string]uint{"followerId": aliceID}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `"followingId" is required`, message(t, rec))
}

func TestUnfollowMissingUserIsNotFollowing(t *testing.T) {
	s := newTestServer(t)
	aliceID, token := s.register("Alice", "alice@example.com")

	rec := s.do(http.MethodDelete, "/api/follow/unfollow", map[string]uint{"followerId": aliceID, "followingId": 999}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Not following this user", message(t, rec))

	rec = s.do(http.MethodDelete, "/api/follow/unfollow", map[string]uint{"followerId": 998, "followingId": 999}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Not following this user", message(t, rec))
}
