package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthGET(t *testing.T, handler *HealthHandler) HealthResponse {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler.RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	return response
}

func TestHealthCheck(t *testing.T) {
	t.Run("no stores wired", func(t *testing.T) {
		response := healthGET(t, NewHealthHandler("docshelf-api", "1.0.0", nil, nil))

		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "docshelf-api", response.Service)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "disabled", response.DB)
		assert.Equal(t, "disabled", response.Redis)
	})

	t.Run("redis probe up", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		defer mr.Close()

		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		response := healthGET(t, NewHealthHandler("docshelf-api", "1.0.0", nil, rdb))

		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "up", response.Redis)
	})

	t.Run("redis probe down degrades status", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)

		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		mr.Close()

		response := healthGET(t, NewHealthHandler("docshelf-api", "1.0.0", nil, rdb))

		assert.Equal(t, "degraded", response.Status)
		assert.Equal(t, "down", response.Redis)
	})
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	NewHealthHandler("docshelf-api", "1.0.0", nil, nil).RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
