package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studata-api/internal/service"
	appErrors "github.com/noah-isme/studata-api/pkg/errors"
	"github.com/noah-isme/studata-api/pkg/response"
)

// DashboardHandler exposes aggregated views over the caller's records.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Summary returns headline counts plus the most recent records.
func (h *DashboardHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, cached, err := h.service.Summary(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, map[string]interface{}{"cached": cached})
}

// Analytics returns gender, caste and class distributions.
func (h *DashboardHandler) Analytics(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	report, cached, err := h.service.Analytics(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, map[string]interface{}{"cached": cached})
}
