package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouterServesHealthAndMetrics(t *testing.T) {
	router := NewRouter(nil)

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}

func TestRouterRejectsPlanWithoutPlanner(t *testing.T) {
	router := NewRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/plans", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
