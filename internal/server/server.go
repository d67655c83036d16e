package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	clientdomain "github.com/sahelsolar/fieldops/internal/client/domain"
	"github.com/sahelsolar/fieldops/internal/config"
	dashboarddomain "github.com/sahelsolar/fieldops/internal/dashboard/domain"
	interventiondomain "github.com/sahelsolar/fieldops/internal/intervention/domain"
	"github.com/sahelsolar/fieldops/internal/observability/logger"
	"github.com/sahelsolar/fieldops/internal/observability/metrics"
	reportdomain "github.com/sahelsolar/fieldops/internal/report/domain"
	supplierdomain "github.com/sahelsolar/fieldops/internal/supplier/domain"
	techniciandomain "github.com/sahelsolar/fieldops/internal/technician/domain"
)

const (
	writeRateLimit  = 60
	writeRateWindow = time.Minute
)

type Server struct {
	cfg config.Config
	db  *gorm.DB
	log *zap.Logger

	supplierSvc     supplierdomain.Service
	clientSvc       clientdomain.Service
	technicianSvc   techniciandomain.Service
	interventionSvc interventiondomain.Service
	dashboardSvc    dashboarddomain.Service
	reportSvc       reportdomain.Service

	engine  *gin.Engine
	limiter *rateLimiter
}

type ServerParam struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	Engine *gin.Engine

	SupplierSvc     supplierdomain.Service
	ClientSvc       clientdomain.Service
	TechnicianSvc   techniciandomain.Service
	InterventionSvc interventiondomain.Service
	DashboardSvc    dashboarddomain.Service
	ReportSvc       reportdomain.Service
}

func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:             p.Config,
		db:              p.DB,
		log:             p.Log.Named("server"),
		supplierSvc:     p.SupplierSvc,
		clientSvc:       p.ClientSvc,
		technicianSvc:   p.TechnicianSvc,
		interventionSvc: p.InterventionSvc,
		dashboardSvc:    p.DashboardSvc,
		reportSvc:       p.ReportSvc,
		engine:          p.Engine,
		limiter:         newRateLimiter(writeRateLimit, writeRateWindow),
	}
}

// RegisterRoutes wires every API endpoint onto the engine.
func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Health)

	api := s.engine.Group("/api")
	api.Use(s.CallerIdentity())

	suppliers := api.Group("/suppliers")
	{
		suppliers.POST("", s.rateLimited(), s.CreateSupplier)
		suppliers.GET("", s.ListSuppliers)
		suppliers.GET("/:id", s.GetSupplierByID)
		suppliers.PUT("/:id", s.rateLimited(), s.UpdateSupplier)
		suppliers.DELETE("/:id", s.rateLimited(), s.DeleteSupplier)
	}

	clients := api.Group("/clients")
	{
		clients.POST("", s.rateLimited(), s.CreateClient)
		clients.GET("", s.ListClients)
		clients.GET("/:id", s.GetClientByID)
		clients.GET("/:id/price-preview", s.PreviewClientPrice)
		clients.PUT("/:id", s.rateLimited(), s.UpdateClient)
		clients.DELETE("/:id", s.rateLimited(), s.DeleteClient)
	}

	technicians := api.Group("/technicians")
	{
		technicians.POST("", s.rateLimited(), s.CreateTechnician)
		technicians.GET("", s.ListTechnicians)
		technicians.GET("/:id", s.GetTechnicianByID)
		technicians.PUT("/:id", s.rateLimited(), s.UpdateTechnician)
		technicians.DELETE("/:id", s.rateLimited(), s.DeleteTechnician)
	}

	interventions := api.Group("/interventions")
	{
		interventions.POST("", s.rateLimited(), s.CreateIntervention)
		interventions.GET("", s.ListInterventions)
		interventions.GET("/:id", s.GetInterventionByID)
		interventions.PUT("/:id", s.rateLimited(), s.UpdateIntervention)
		interventions.DELETE("/:id", s.rateLimited(), s.DeleteIntervention)
	}

	dashboards := api.Group("/dashboards")
	{
		dashboards.GET("/admin", s.AdminDashboard)
		dashboards.GET("/technicians/:id", s.TechnicianDashboard)
	}

	reports := api.Group("/reports")
	{
		reports.POST("", s.rateLimited(), s.GenerateReport)
		reports.GET("", s.ListReports)
		reports.GET("/analyst/health", s.AnalystHealth)
		reports.GET("/:id", s.GetReportByID)
		reports.DELETE("/:id", s.rateLimited(), s.DeleteReport)
	}
}

// Health reports liveness and database reachability.
func (s *Server) Health(c *gin.Context) {
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

func (s *Server) rateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)
