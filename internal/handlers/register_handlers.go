package handlers

import (
	"fmt"
	"reflect"

	portssvc "github.com/SscSPs/client_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/client_ledger_app/internal/middleware"
	"github.com/SscSPs/client_ledger_app/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	ledgerService portssvc.LedgerSvcFacade,
) error {
	registerDecimalValidation()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	r.Use(corsMiddleware(cfg))

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("parsing rate limit %q: %w", cfg.RateLimit, err)
	}
	limiterInstance := limiter.New(limitermem.NewStore(), rate)

	// API v1 group carries the rate limiter; health stays unlimited.
	v1 := r.Group("/api/v1", middleware.RateLimit(limiterInstance))
	registerAccountRoutes(v1, ledgerService)

	return nil
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 0 || cfg.CORSAllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return cors.New(corsCfg)
}

// registerDecimalValidation teaches the binding validator to treat
// decimal.Decimal as its float value, so tags like gt=0 work on DTO amounts.
func registerDecimalValidation() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}
