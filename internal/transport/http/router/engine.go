package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"socialdesk/internal/core/config"
	mdw "socialdesk/internal/transport/http/middleware"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Log      *zap.Logger
	Limits   config.Limits
	Registry *Registry
	Health   map[string]HealthCheck
}

func newEngine(server string, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		mdw.RequestID(),
		ginzap.RecoveryWithZap(d.Log, true), // 外层兜底，中间件自身 panic
		mdw.Recovery(d.Log),
		cors.Default(),
		mdw.RateLimit(rate.Limit(d.Limits.RPS), d.Limits.Burst),
		mdw.RateLimitPerIP(rate.Limit(d.Limits.PerIPRPS), d.Limits.PerIPBurst, 10*time.Minute),
		mdw.ConcurrencyLimit(d.Limits.MaxInFlight),
		mdw.MaxBodyBytes(d.Limits.MaxBodyBytes),
		mdw.Timeout(time.Duration(d.Limits.RequestTimeout)*time.Second),
		mdw.Metrics(server),
		mdw.AccessLog(d.Log),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		out := gin.H{"ok": 1}
		status := http.StatusOK
		for name, check := range d.Health {
			if err := check(c.Request.Context()); err != nil {
				out[name] = err.Error()
				out["ok"] = 0
				status = http.StatusServiceUnavailable
				continue
			}
			out[name] = "up"
		}
		c.JSON(status, out)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
