package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const probeTimeout = 1 * time.Second

// HealthResponse reports the service identity and the state of its two
// backing stores. A probe reads "disabled" when the dependency is not
// wired, which keeps the handler usable in tests and partial deployments.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db,omitempty"`
	Redis     string    `json:"redis,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	db          *pgxpool.Pool
	redis       *redis.Client
}

func NewHealthHandler(serviceName, version string, db *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
		redis:       rdb,
	}
}

// HealthCheck pings Postgres (projects, documents, events) and Redis (view
// counters, public site cache). The endpoint itself always answers 200;
// a failed probe downgrades the reported status to "degraded" so a probe
// failure is visible without bouncing the pod on every blip.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "disabled"
	if h.db != nil {
		dbStatus = "up"
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()
		if err := h.db.Ping(pingCtx); err != nil {
			dbStatus = "down"
		}
	}

	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "up"
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()
		if err := h.redis.Ping(pingCtx).Err(); err != nil {
			redisStatus = "down"
		}
	}

	status := "healthy"
	if dbStatus == "down" || redisStatus == "down" {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        dbStatus,
		Redis:     redisStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
