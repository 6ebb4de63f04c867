package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anonto42/blog-api/backend/internal/auth"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/anonto42/blog-api/backend/internal/router"
	"github.com/anonto42/blog-api/backend/pkg/config"
	"github.com/anonto42/blog-api/backend/pkg/metrics"
	"github.com/anonto42/blog-api/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testMaxUpload = 64 * 1024

var dbSeq atomic.Int64

type testServer struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := config.OpenSQLite(fmt.Sprintf("handlers_%d", dbSeq.Add(1)))
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	blobs, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	creds, err := auth.NewCredentials("test-secret", time.Hour, bcrypt.MinCost)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	e := router.New(router.Deps{
		DB:          db,
		Blobs:       blobs,
		Credentials: creds,
		Metrics:     metrics.New(),
		Log:         log,
		Config:      &config.Config{AuthHeader: "auth", MaxUploadSize: testMaxUpload},
	})
	return &testServer{t: t, e: e, db: db}
}

// do sends body as JSON (when non-nil) with token in the auth header.
func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("auth", token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// upload posts a multipart form with one file under field.
func (s *testServer) upload(path, field, filename string, content []byte, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(s.t, err)
		_, err = part.Write(content)
		require.NoError(s.t, err)
	} else {
		require.NoError(s.t, w.WriteField("note", "no file"))
	}
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set("auth", token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// register creates a user and returns its id and token.
func (s *testServer) register(name, email string) (uint, string) {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": "secret123",
	}, "")
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(s.t, rec)
	return idOf(body["user"]), body["token"].(string)
}

func (s *testServer) createPost(token string, userID uint, title string) uint {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/posts/create", map[string]any{
		"title": title, "content": "content of " + title, "userId": userID,
	}, token)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return idOf(decode(s.t, rec)["post"])
}

func (s *testServer) follow(token string, follower, following uint) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(http.MethodPost, "/api/follow", map[string]uint{
		"followerId": follower, "followingId": following,
	}, token)
}

func (s *testServer) count(model any) int64 {
	s.t.Helper()
	var n int64
	require.NoError(s.t, s.db.Model(model).Count(&n).Error)
	return n
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func idOf(v any) uint {
	return uint(v.(map[string]any)["id"].(float64))
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, rec)["message"].(string)
	return msg
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
