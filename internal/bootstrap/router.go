package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/payos-hq/payos-sandbox/config"
	"github.com/payos-hq/payos-sandbox/internal/agentcontext"
	httpapi "github.com/payos-hq/payos-sandbox/internal/api/http"
	"github.com/payos-hq/payos-sandbox/internal/api/http/middleware"
	"github.com/payos-hq/payos-sandbox/internal/capabilities"
	fachttp "github.com/payos-hq/payos-sandbox/internal/facilitator/http"
	facservice "github.com/payos-hq/payos-sandbox/internal/facilitator/service"
	ucphttp "github.com/payos-hq/payos-sandbox/internal/ucp/http"
	ucpservice "github.com/payos-hq/payos-sandbox/internal/ucp/service"
)

type RouterDeps struct {
	ServiceName string
	Config      *config.Config
	Redis       *redis.Client
	DB          *pgxpool.Pool
	Quotes      *ucpservice.QuoteService
	Settlements *ucpservice.SettlementService
	Facilitator *facservice.Facilitator
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.Default())
	r.Use(middleware.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Config.App.Version, dep.Redis, dep.DB)
	healthHandler.RegisterRoutes(r)

	v1 := r.Group("/v1")
	v1.Use(middleware.APIKeyMiddleware(dep.Config.Sandbox.APIKeys))
	v1.Use(middleware.RateLimitMiddleware(dep.Config.Sandbox.RateLimitRPS, dep.Config.Sandbox.RateLimitBurst))

	capabilities.NewHandler(dep.Config.App.Version).Register(v1)
	agentcontext.NewHandler(
		dep.Config.Sandbox.QuoteTTL,
		dep.Config.Sandbox.TokenTTL,
		dep.Config.Sandbox.RateLimitRPS,
		dep.Config.Sandbox.RateLimitBurst,
	).Register(v1)

	ucpGroup := v1.Group("/ucp")
	ucphttp.NewHandler(dep.Quotes, dep.Settlements).Register(ucpGroup)

	facGroup := v1.Group("/x402/facilitator")
	fachttp.NewHandler(dep.Facilitator).Register(facGroup)

	return r
}
