package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studata-api/internal/models"
)

func studentPayload(name string) gin.H {
	return gin.H{
		"name":                    name,
		"gender":                  "Female",
		"caste":                   "BC",
		"casteName":               "Yadav",
		"dateOfBirth":             "2015-06-01",
		"PEN":                     "123456789012",
		"admnNo":                  "A-101",
		"apaarID":                 "APR-101",
		"class":                   "5",
		"aadharNumber":            "111122223333",
		"fatherName":              "Father",
		"fatheraadharNumber":      "444455556666",
		"fathermobileNumber":      "9000000001",
		"motherName":              "Mother",
		"motheraadharNumber":      "777788889999",
		"mothermobileNumber":      "9000000002",
		"motherBankAccountNumber": "1234567890",
		"motherIFSCCode":          "SBIN0000001",
		"motherBranchName":        "Main",
		"habitation":              "Village",
	}
}

func decodeStudent(t *testing.T, body []byte) models.Student {
	t.Helper()
	var envelope struct {
		Data models.Student `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

func decodeStudents(t *testing.T, body []byte) []models.Student {
	t.Helper()
	var envelope struct {
		Data []models.Student `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

func TestStudentsRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/students", "", studentPayload("Asha"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStudentCRUDLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "teacher@example.com")

	rec := doJSON(t, r, http.MethodPost, "/students", token, studentPayload("Asha"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeStudent(t, rec.Body.Bytes())
	assert.Equal(t, "1", created.ID)
	assert.Equal(t, "Asha", created.Name)

	rec = doJSON(t, r, http.MethodPost, "/students", token, studentPayload("Ravi"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/students", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	students := decodeStudents(t, rec.Body.Bytes())
	require.Len(t, students, 2)

	payload := studentPayload("Asha Updated")
	rec = doJSON(t, r, http.MethodPut, "/students/1", token, payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeStudent(t, rec.Body.Bytes())
	assert.Equal(t, "1", updated.ID)
	assert.Equal(t, "Asha Updated", updated.Name)

	rec = doJSON(t, r, http.MethodDelete, "/students/1", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/students", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	students = decodeStudents(t, rec.Body.Bytes())
	require.Len(t, students, 1)
	assert.Equal(t, "1", students[0].ID)
	assert.Equal(t, "Ravi", students[0].Name)
}

func TestStudentCreateValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "teacher@example.com")

	payload := studentPayload("Asha")
	payload["gender"] = "Unknown"
	rec := doJSON(t, r, http.MethodPost, "/students", token, payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentGetMissing(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "teacher@example.com")

	rec := doJSON(t, r, http.MethodGet, "/students/42", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentScopesDoNotLeak(t *testing.T) {
	r, _ := newTestRouter(t)
	tokenA := registerAndLogin(t, r, "a@example.com")
	tokenB := registerAndLogin(t, r, "b@example.com")

	rec := doJSON(t, r, http.MethodPost, "/students", tokenA, studentPayload("Asha"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/students", tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	students := decodeStudents(t, rec.Body.Bytes())
	assert.Empty(t, students)

	rec = doJSON(t, r, http.MethodGet, "/students/1", tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentImport(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "teacher@example.com")

	rec := doJSON(t, r, http.MethodPost, "/students/import", token, []gin.H{
		{"name": "Imported One"},
		{"name": "Imported Two"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodGet, "/students", token, nil)
	students := decodeStudents(t, rec.Body.Bytes())
	require.Len(t, students, 2)
	assert.Equal(t, "1", students[0].ID)
	assert.Equal(t, "2", students[1].ID)
}

func TestStudentImportRejectsMalformedEntries(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "teacher@example.com")

	rec := doJSON(t, r, http.MethodPost, "/students/import", token, []gin.H{
		{"gender": "Male"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentClear(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "teacher@example.com")

	rec := doJSON(t, r, http.MethodPost, "/students", token, studentPayload("Asha"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/students", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/students", token, nil)
	students := decodeStudents(t, rec.Body.Bytes())
	assert.Empty(t, students)
}
