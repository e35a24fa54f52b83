package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/riverwatchhq/riverwatch/pkg/response"
)

func newServiceAuthRouter(expected string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ServiceAuth(expected))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestServiceAuthAcceptsMatchingToken(t *testing.T) {
	r := newServiceAuthRouter("s3cret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pong", w.Body.String())
}

func TestServiceAuthRejectsMissingHeader(t *testing.T) {
	r := newServiceAuthRouter("s3cret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.Equal(t, "UNAUTHORIZED", payload.Error.Code)
}

func TestServiceAuthRejectsWrongToken(t *testing.T) {
	r := newServiceAuthRouter("s3cret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer nope")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServiceAuthRejectsMalformedHeader(t *testing.T) {
	r := newServiceAuthRouter("s3cret")

	for _, header := range []string{"s3cret", "Basic s3cret", "Bearer"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestServiceAuthDisabledWhenTokenEmpty(t *testing.T) {
	r := newServiceAuthRouter("  ")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
