package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studata-api/internal/models"
	"github.com/noah-isme/studata-api/internal/service"
	appErrors "github.com/noah-isme/studata-api/pkg/errors"
	"github.com/noah-isme/studata-api/pkg/response"
)

// StudentHandler exposes the per-account student record endpoints.
type StudentHandler struct {
	service *service.StudentService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(svc *service.StudentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List returns the caller's records in serial order.
func (h *StudentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	students, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"total": len(students)})
}

// Get returns one record by serial id.
func (h *StudentHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	student, err := h.service.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create adds a record with the next serial number.
func (h *StudentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var form models.StudentFormData
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}

	student, err := h.service.Add(c.Request.Context(), claims.UserID, form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update replaces the descriptive fields of a record.
func (h *StudentHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var form models.StudentFormData
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}

	student, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete removes a record and renumbers the remainder.
func (h *StudentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Clear wipes every record in the caller's scope.
func (h *StudentHandler) Clear(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Clear(c.Request.Context(), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import merges an uploaded record list into the caller's scope.
func (h *StudentHandler) Import(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var entries []models.Student
	if err := c.ShouldBindJSON(&entries); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid file format"))
		return
	}

	count, err := h.service.Import(c.Request.Context(), claims.UserID, entries)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"imported": count}, nil)
}
