package repositories

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var sqliteSeq atomic.Int64

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenSQLite(fmt.Sprintf("repositories_%d", sqliteSeq.Add(1)))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUsers(t *testing.T, db *gorm.DB, names ...string) []models.User {
	t.Helper()
	repo := NewPostgresUserRepository(db)
	users := make([]models.User, len(names))
	for i, name := range names {
		users[i] = models.User{Name: name, Email: name + "@example.com", Password: "hash"}
		require.NoError(t, repo.CreateUser(context.Background(), &users[i]))
	}
	return users
}

func TestUniqueEmail(t *testing.T) {
	db := newSQLiteDB(t)
	seedUsers(t, db, "alice")

	err := NewPostgresUserRepository(db).CreateUser(context.Background(), &models.User{
		Name: "other", Email: "alice@example.com", Password: "hash",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestConcurrentDuplicateLikesLeaveOneRow(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	users := seedUsers(t, db, "alice")
	post := models.Post{Title: "t", Content: "c", UserID: users[0].ID}
	require.NoError(t, NewPostgresPostRepository(db).CreatePost(ctx, &post))

	repo := NewPostgresLikeRepository(db)
	var (
		wg        sync.WaitGroup
		created   atomic.Int64
		conflicts atomic.Int64
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.CreateLike(ctx, &models.Like{UserID: users[0].ID, PostID: post.ID})
			switch {
			case err == nil:
				created.Add(1)
			case assert.ErrorIs(t, err, ErrDuplicate):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), created.Load())
	assert.Equal(t, int64(7), conflicts.Load())
}

func TestFollowConstraints(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	users := seedUsers(t, db, "alice", "bob")
	repo := NewPostgresFollowRepository(db)

	require.NoError(t, repo.CreateFollow(ctx, &models.Follow{FollowerID: users[0].ID, FollowingID: users[1].ID}))
	assert.ErrorIs(t, repo.CreateFollow(ctx, &models.Follow{FollowerID: users[0].ID, FollowingID: users[1].ID}), ErrDuplicate)
	assert.ErrorIs(t, repo.CreateFollow(ctx, &models.Follow{FollowerID: users[0].ID, FollowingID: 999}), ErrMissingReference)
	assert.Error(t, repo.CreateFollow(ctx, &models.Follow{FollowerID: users[1].ID, FollowingID: users[1].ID}), "check constraint rejects self edges")

	followers, err := repo.GetFollowers(ctx, users[1].ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Follower.Name)
	assert.Empty(t, followers[0].Follower.Password)

	ids, err := repo.GetFollowingIDs(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{users[1].ID}, ids)
}

func TestPostDetailProjectsUsers(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	users := seedUsers(t, db, "alice", "bob")

	post := models.Post{Title: "t", Content: "c", UserID: users[0].ID}
	require.NoError(t, NewPostgresPostRepository(db).CreatePost(ctx, &post))
	require.NoError(t, NewPostgresCommentRepository(db).CreateComment(ctx, &models.Comment{Content: "hi", UserID: users[1].ID, PostID: post.ID}))
	require.NoError(t, NewPostgresLikeRepository(db).CreateLike(ctx, &models.Like{UserID: users[1].ID, PostID: post.ID}))

	got, err := NewPostgresPostRepository(db).GetPostDetail(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice", got.User.Name)
	assert.Empty(t, got.User.Password)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "bob", got.Comments[0].User.Name)
	assert.Empty(t, got.Comments[0].User.Password)
	require.Len(t, got.Likes, 1)
	assert.Empty(t, got.Likes[0].User.Password)

	_, err = NewPostgresPostRepository(db).GetPostDetail(ctx, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSearchUsersByEmailTreatsWildcardsLiterally(t *testing.T) {
	db := newSQLiteDB(t)
	seedUsers(t, db, "alice", "bob_x", "bobyx")
	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	users, err := repo.SearchUsersByEmail(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, users)

	users, err = repo.SearchUsersByEmail(ctx, "B_X")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob_x@example.com", users[0].Email)

	users, err = repo.SearchUsersByEmail(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestAutoMigrateCreatesOneCascadingKeyPerColumn(t *testing.T) {
	db := newSQLiteDB(t)

	type foreignKey struct {
		Table    string
		From     string
		OnDelete string
	}
	want := map[string][]string{
		"posts":    {"user_id"},
		"comments": {"post_id", "user_id"},
		"likes":    {"post_id", "user_id"},
		"follows":  {"follower_id", "following_id"},
	}
	for table, columns := range want {
		var keys []foreignKey
		require.NoError(t, db.Raw("SELECT * FROM pragma_foreign_key_list(?)", table).Scan(&keys).Error)

		var from []string
		for _, k := range keys {
			from = append(from, k.From)
			assert.Equal(t, "CASCADE", k.OnDelete, "%s.%s", table, k.From)
		}
		assert.ElementsMatch(t, columns, from, table)
	}
}
