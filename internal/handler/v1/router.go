package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rxdesk/rxdesk/internal/config"
	"github.com/rxdesk/rxdesk/internal/service"
	"github.com/rxdesk/rxdesk/pkg/auth"
	"github.com/rxdesk/rxdesk/pkg/metrics"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth          *service.AuthService
	Prescriptions *service.PrescriptionService
	Orders        *service.OrderService
	Stock         *service.StockService
	Settings      *service.SettingsService
}

// NewRouter builds the gin engine with all v1 routes registered.
func NewRouter(cfg *config.Config, svcs Services, jwtManager *auth.JWTManager, collector *metrics.Collector, log *zap.Logger) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(RequestMetrics(collector))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	engine.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := engine.Group("/api/v1")
	NewAuthHandler(svcs.Auth).Register(api)

	authed := api.Group("")
	authed.Use(Authenticate(jwtManager))
	NewPrescriptionHandler(svcs.Prescriptions, collector).Register(authed)
	NewOrderHandler(svcs.Orders, collector).Register(authed)
	NewStockHandler(svcs.Stock, collector).Register(authed)
	NewSettingsHandler(svcs.Settings).Register(authed)
	NewDashboardHandler(svcs.Prescriptions, svcs.Orders, svcs.Stock).Register(authed)

	return engine
}
