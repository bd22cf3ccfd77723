package httpserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/personal_library/internal/models"
	"github.com/Skotchmaster/personal_library/internal/repo"
	"github.com/Skotchmaster/personal_library/internal/service"
	"github.com/Skotchmaster/personal_library/internal/storage"
	"github.com/Skotchmaster/personal_library/internal/tokens"
)

var testJWTSecret = []byte("test-jwt-secret")

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Tokens *tokens.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "library.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Book{}))

	images, err := storage.NewImageStore(t.TempDir())
	require.NoError(t, err)

	tokenSvc := tokens.NewService(testJWTSecret, 15*time.Minute)
	gormRepo := &repo.GormRepo{DB: db}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:  &AuthHTTP{Svc: &service.AuthService{Repo: gormRepo, Tokens: tokenSvc}},
		BookHandler:  &BookHTTP{Svc: &service.LibraryService{Repo: gormRepo, Images: images}},
		ImageHandler: &ImageHTTP{Store: images},
		Tokens:       tokenSvc,
	})

	return &testEnv{T: t, E: e, DB: db, Tokens: tokenSvc}
}

func (env *testEnv) doJSON(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

type formFile struct {
	Field   string
	Name    string
	Content []byte
}

func (env *testEnv) doForm(method, path string, fields map[string]string, file *formFile, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(env.T, w.WriteField(k, v))
	}
	if file != nil {
		fw, err := w.CreateFormFile(file.Field, file.Name)
		require.NoError(env.T, err)
		_, err = fw.Write(file.Content)
		require.NoError(env.T, err)
	}
	require.NoError(env.T, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, env *testEnv, username string) (string, uint) {
	t.Helper()

	creds := map[string]string{"username": username, "password": "Secret123"}

	rec := env.doJSON(http.MethodPost, "/api/register", creds, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodPost, "/api/auth/login", creds, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token  string `json:"token"`
		UserID uint   `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	return resp.Token, resp.UserID
}
