package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "recruiting-console/internal/auth"
	"recruiting-console/internal/inventory"
	"recruiting-console/internal/listing"
	"recruiting-console/internal/matchrun"
	"recruiting-console/internal/posting"
	"recruiting-console/internal/selection"
	"recruiting-console/internal/services/health"
	"recruiting-console/internal/shared/config"
	"recruiting-console/internal/shared/metrics"
	"recruiting-console/internal/shared/server/middleware"
)

// RouterDeps carries the wired handlers the router mounts.
type RouterDeps struct {
	Config           config.Config
	Health           *health.Service
	GoogleAuth       *googleauth.GoogleService
	InventoryHandler *inventory.Handler
	SelectionHandler *selection.Handler
	ListingHandler   *listing.Handler
	MatchHandler     *matchrun.Handler
	PostingHandler   *posting.Handler
}

// NewRouter constructs the gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"MUTATE":  {Rate: 5, Burst: 10},
				"DEFAULT": {Rate: 20, Burst: 40},
			},
			GroupFor: func(c *gin.Context) string {
				switch c.Request.Method {
				case http.MethodGet, http.MethodHead, http.MethodOptions:
					return "DEFAULT"
				default:
					return "MUTATE"
				}
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Health.Status(c.Request.Context()))
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	deps.InventoryHandler.RegisterRoutes(api)
	deps.SelectionHandler.RegisterRoutes(api)
	deps.ListingHandler.RegisterRoutes(api)
	deps.MatchHandler.RegisterRoutes(api)
	deps.PostingHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
