package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"amount-detection/internal/dto"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIInfo(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := NewAPIInfoHandler()
	require.NoError(t, handler.APIInfo(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response dto.APIInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	assert.Equal(t, "Amount Detection API", response.Name)
	assert.NotEmpty(t, response.Version)
	assert.Contains(t, response.Endpoints, "POST /api/detect-amounts-text")
	assert.Contains(t, response.Endpoints, "POST /api/detect-amounts-image")
	assert.Contains(t, response.Endpoints, "GET /api/health")
}
