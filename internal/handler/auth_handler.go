package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studata-api/internal/models"
	"github.com/noah-isme/studata-api/internal/service"
	appErrors "github.com/noah-isme/studata-api/pkg/errors"
	"github.com/noah-isme/studata-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Register creates a new account. The new account is not logged in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// Login authenticates by email and password and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout clears the persisted session. Idempotent.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me returns the persisted session account, if any.
func (h *AuthHandler) Me(c *gin.Context) {
	info, err := h.service.CurrentSession(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if info == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}
