package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studata-api/internal/models"
	"github.com/noah-isme/studata-api/internal/service"
	appErrors "github.com/noah-isme/studata-api/pkg/errors"
	"github.com/noah-isme/studata-api/pkg/response"
)

// ExportHandler exposes asynchronous export endpoints.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Create queues an export job for the caller's records.
func (h *ExportHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Format models.ExportFormat `json:"format"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), claims.UserID, payload.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status returns the job record for polling.
func (h *ExportHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	job, err := h.service.GetStatus(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download streams the rendered file for a valid signed token.
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	job, file, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	filename := filepath.Base(job.FilePath)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentTypeFor(job.Format))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}

func contentTypeFor(format models.ExportFormat) string {
	switch format {
	case models.ExportFormatJSON:
		return "application/json"
	case models.ExportFormatCSV:
		return "text/csv"
	case models.ExportFormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
