package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestRequestID_GeneratesUUIDTraceID(t *testing.T) {
	c, rec := traceContext(t)

	var seen string
	handler := RequestID()(func(c echo.Context) error {
		seen = GetTraceID(c)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))

	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, seen)
	assert.Equal(t, seen, rec.Header().Get(TraceIDHeader), "header and context must carry the same ID")
}

func TestRequestID_HonorsIncomingTraceID(t *testing.T) {
	c, rec := traceContext(t)
	c.Request().Header.Set(TraceIDHeader, "upstream-trace-42")

	handler := RequestID()(func(c echo.Context) error {
		assert.Equal(t, "upstream-trace-42", GetTraceID(c))
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, "upstream-trace-42", rec.Header().Get(TraceIDHeader))
}

func TestGetTraceID_EmptyOutsideMiddleware(t *testing.T) {
	c, _ := traceContext(t)
	assert.Empty(t, GetTraceID(c))
}
