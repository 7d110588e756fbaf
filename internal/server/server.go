package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/toty12222/controlo-fibra-netkamba/internal/clock"
	"github.com/toty12222/controlo-fibra-netkamba/internal/config"
	customerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/customer/domain"
	importerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/importer/domain"
	ledgerdomain "github.com/toty12222/controlo-fibra-netkamba/internal/ledger/domain"
	"github.com/toty12222/controlo-fibra-netkamba/internal/monitor"
	notificationdomain "github.com/toty12222/controlo-fibra-netkamba/internal/notification/domain"
	obslogger "github.com/toty12222/controlo-fibra-netkamba/internal/observability/logger"
	"github.com/toty12222/controlo-fibra-netkamba/internal/observability/metrics"
	"github.com/toty12222/controlo-fibra-netkamba/internal/observability/tracing"
	reportingdomain "github.com/toty12222/controlo-fibra-netkamba/internal/reporting/domain"
	statusdomain "github.com/toty12222/controlo-fibra-netkamba/internal/status/domain"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg             config.Config
	Log             *zap.Logger
	DB              *gorm.DB
	Clock           clock.Clock
	CustomerSvc     customerdomain.Service
	LedgerSvc       ledgerdomain.Service
	StatusSvc       statusdomain.Service
	NotificationSvc notificationdomain.Service
	ReportingSvc    reportingdomain.Service
	ImporterSvc     importerdomain.Service
	MonitorWorker   *monitor.Worker
}

// Server carries the HTTP handler dependencies.
type Server struct {
	cfg             config.Config
	log             *zap.Logger
	db              *gorm.DB
	clock           clock.Clock
	customerSvc     customerdomain.Service
	ledgerSvc       ledgerdomain.Service
	statusSvc       statusdomain.Service
	notificationSvc notificationdomain.Service
	reportingSvc    reportingdomain.Service
	importerSvc     importerdomain.Service
	monitorWorker   *monitor.Worker
	importLimiter   *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		db:              p.DB,
		clock:           p.Clock,
		customerSvc:     p.CustomerSvc,
		ledgerSvc:       p.LedgerSvc,
		statusSvc:       p.StatusSvc,
		notificationSvc: p.NotificationSvc,
		reportingSvc:    p.ReportingSvc,
		importerSvc:     p.ImporterSvc,
		monitorWorker:   p.MonitorWorker,
		importLimiter:   newRateLimiter(5, time.Minute),
	}
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Logger:    log.Named("http.access"),
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(tracing.GinMiddleware())

	httpMetrics, err := metrics.NewHTTPMetrics(metrics.Config{
		ServiceName: "netkamba",
		Environment: cfg.Environment,
	}, otel.GetMeterProvider())
	if err != nil {
		log.Warn("http metrics disabled", zap.Error(err))
	} else {
		engine.Use(metrics.GinMiddleware(httpMetrics))
	}

	return engine
}

// RegisterRoutes mounts the full API surface on the engine.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	{
		v1.POST("/customers", s.CreateCustomer)
		v1.GET("/customers", s.ListCustomers)
		v1.GET("/customers/:id", s.GetCustomerByID)
		v1.PATCH("/customers/:id/state", s.UpdateCustomerState)

		v1.POST("/customers/:id/payments", s.RecordPayment)
		v1.POST("/customers/:id/cycle", s.AdvanceCycle)

		v1.PUT("/customers/:id/status", s.SetServiceStatus)
		v1.GET("/customers/:id/status", s.GetServiceStatus)

		v1.GET("/notifications", s.ListNotifications)

		v1.POST("/import/customers", s.ImportCustomers)

		reports := v1.Group("/reports")
		{
			reports.GET("/overdue", s.ReportOverdue)
			reports.GET("/due", s.ReportDueInWindow)
			reports.GET("/monthly", s.ReportMonthlyPayments)
			reports.GET("/expirations", s.ReportContractExpirations)
			reports.GET("/overview", s.ReportOverview)
			reports.GET("/deactivation-candidates", s.ReportDeactivationCandidates)
		}
	}
}

func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var Module = fx.Module("http.server",
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(RunHTTP),
)

// RunHTTP serves the API for the lifetime of the application.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine, server *Server) {
	server.RegisterRoutes(engine)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})
}
