package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studata-api/internal/middleware"
	"github.com/noah-isme/studata-api/internal/repository"
	"github.com/noah-isme/studata-api/internal/service"
	"github.com/noah-isme/studata-api/pkg/kvstore"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := kvstore.NewMemoryStore()
	identityRepo := repository.NewIdentityRepository(store, nil)
	studentRepo := repository.NewStudentRepository(store, nil)

	authSvc := service.NewAuthService(identityRepo, nil, nil, service.AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "studata-api",
	})
	studentSvc := service.NewStudentService(studentRepo, nil, nil, nil)

	r := gin.New()
	authRequired := middleware.JWT(authSvc)

	authHandler := NewAuthHandler(authSvc)
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/logout", authRequired, authHandler.Logout)
	r.GET("/auth/me", authRequired, authHandler.Me)

	studentHandler := NewStudentHandler(studentSvc)
	students := r.Group("/students", authRequired)
	students.GET("", studentHandler.List)
	students.POST("", studentHandler.Create)
	students.DELETE("", studentHandler.Clear)
	students.POST("/import", studentHandler.Import)
	students.GET("/:id", studentHandler.Get)
	students.PUT("/:id", studentHandler.Update)
	students.DELETE("/:id", studentHandler.Delete)

	return r, authSvc
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"name":            "Test User",
		"email":           email,
		"password":        "pass123",
		"confirmPassword": "pass123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email":    email,
		"password": "pass123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)
	return envelope.Data.AccessToken
}

func TestRegisterThenLogin(t *testing.T) {
	r, _ := newTestRouter(t)

	token := registerAndLogin(t, r, "user@example.com")
	assert.NotEmpty(t, token)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	r, _ := newTestRouter(t)

	payload := gin.H{
		"name":            "Test User",
		"email":           "dup@example.com",
		"password":        "pass123",
		"confirmPassword": "pass123",
	}
	rec := doJSON(t, r, http.MethodPost, "/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAndLogin(t, r, "user@example.com")

	rec := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "user@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsSessionAccount(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "user@example.com")

	rec := doJSON(t, r, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Email string `json:"email"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "user@example.com", envelope.Data.Email)
}

func TestLogoutClearsSession(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "user@example.com")

	rec := doJSON(t, r, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// the bearer token stays valid, but the session slot is gone
	rec = doJSON(t, r, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
