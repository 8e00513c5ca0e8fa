package bootstrap

import (
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/docshelf-app/docshelf-backend/internal/analytics"
	analyticshttp "github.com/docshelf-app/docshelf-backend/internal/analytics/http"
	httpapi "github.com/docshelf-app/docshelf-backend/internal/api/http"
	"github.com/docshelf-app/docshelf-backend/internal/api/http/middleware"
	"github.com/docshelf-app/docshelf-backend/internal/auth"
	authmw "github.com/docshelf-app/docshelf-backend/internal/auth/middleware"
	documentshttp "github.com/docshelf-app/docshelf-backend/internal/documents/http"
	documentsrepo "github.com/docshelf-app/docshelf-backend/internal/documents/repository"
	documentssvc "github.com/docshelf-app/docshelf-backend/internal/documents/service"
	"github.com/docshelf-app/docshelf-backend/internal/events"
	projectshttp "github.com/docshelf-app/docshelf-backend/internal/projects/http"
	projectsrepo "github.com/docshelf-app/docshelf-backend/internal/projects/repository"
	projectssvc "github.com/docshelf-app/docshelf-backend/internal/projects/service"
	"github.com/docshelf-app/docshelf-backend/internal/public"
	publichttp "github.com/docshelf-app/docshelf-backend/internal/public/http"
	"github.com/docshelf-app/docshelf-backend/internal/tenants"
	"github.com/docshelf-app/docshelf-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *pgxpool.Pool
	Redis       *redis.Client
	AuthClient  *firebaseauth.Client // nil switches to header auth
	CORSOrigins []string
}

// BuildRouter assembles the full HTTP surface: health probes, the
// authenticated dashboard API under /api/v1, and the unauthenticated
// public site under /public.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(corsMiddleware(dep.CORSOrigins))

	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis).RegisterRoutes(r)

	userRepo := users.NewRepo(dep.DB)
	tenantRepo := tenants.NewRepo(dep.DB)
	projectRepo := projectsrepo.NewRepo(dep.DB)
	documentRepo := documentsrepo.NewRepo(dep.DB)
	recorder := events.NewRecorder(dep.DB)
	counter := analytics.NewViewCounter(dep.Redis)

	projectHandler := projectshttp.New(projectssvc.NewService(projectRepo, recorder))
	documentHandler := documentshttp.New(documentssvc.NewService(documentRepo, projectRepo, recorder))
	analyticsHandler := analyticshttp.New(projectRepo, analytics.NewHistory(dep.DB), counter, recorder)

	api := r.Group("/api/v1")
	if dep.AuthClient != nil {
		api.Use(authmw.FirebaseAuth(dep.AuthClient))
	} else {
		api.Use(authmw.HeaderAuth())
	}
	api.Use(auth.WithUser(userRepo))
	api.Use(auth.WithTenant(tenantRepo))

	tenants.Register(api.Group("/tenants"), tenantRepo, auth.CtxUserDBID)

	projectsGroup := api.Group("/projects")
	projectHandler.Register(projectsGroup)
	documentHandler.RegisterProjectSubroutes(projectsGroup)
	analyticsHandler.Register(projectsGroup)

	documentHandler.Register(api.Group("/documents"))

	publicHandler := publichttp.New(public.NewRepo(dep.DB), public.NewCache(dep.Redis), counter)
	publicGroup := r.Group("/public")
	publicGroup.Use(publichttp.NewIPRateLimiter(rate.Limit(10), 30).Middleware())
	publicHandler.Register(publicGroup)

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Tenant-Id", "X-User-Id", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
