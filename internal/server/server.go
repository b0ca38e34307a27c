package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	"github.com/smallbiznis/payrollrecon/internal/config"
	obslogger "github.com/smallbiznis/payrollrecon/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/payrollrecon/internal/observability/metrics"
	"github.com/smallbiznis/payrollrecon/internal/observability/tracing"
	overduedomain "github.com/smallbiznis/payrollrecon/internal/overdue/domain"
	paymentdomain "github.com/smallbiznis/payrollrecon/internal/payment/domain"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	maxUploadBytes  = 32 << 20
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = maxUploadBytes
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           !cfg.IsProduction(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(tracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	rules       *config.PayrollConfigHolder
	planSvc     plandomain.Service
	payscaleSvc payscaledomain.Service
	agentSvc    agentdomain.Service
	payrollSvc  payrolldomain.Service
	paymentSvc  paymentdomain.Service
	overdueSvc  overduedomain.Service
	auditSvc    auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Rules       *config.PayrollConfigHolder
	PlanSvc     plandomain.Service
	PayscaleSvc payscaledomain.Service
	AgentSvc    agentdomain.Service
	PayrollSvc  payrolldomain.Service
	PaymentSvc  paymentdomain.Service
	OverdueSvc  overduedomain.Service
	AuditSvc    auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		rules:       p.Rules,
		planSvc:     p.PlanSvc,
		payscaleSvc: p.PayscaleSvc,
		agentSvc:    p.AgentSvc,
		payrollSvc:  p.PayrollSvc,
		paymentSvc:  p.PaymentSvc,
		overdueSvc:  p.OverdueSvc,
		auditSvc:    p.AuditSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Payroll reports --------
	payroll := api.Group("/payroll")
	payroll.POST("/reports", s.GenerateReport)
	payroll.GET("/overdue", s.GetOverdueCount)

	payroll.GET("/batches", s.ListBatches)
	payroll.POST("/batches", s.SaveBatch)
	payroll.GET("/batches/:id", s.GetBatch)
	payroll.PATCH("/batches/:id", s.RenameBatch)
	payroll.DELETE("/batches/:id", s.DeleteBatch)

	// -------- Payment tracking --------
	payroll.POST("/lines/:id/toggle", s.ToggleLinePaid)
	payroll.POST("/lines/:id/accounts/:account_id/toggle", s.ToggleAccountPaid)

	// -------- Plans --------
	api.GET("/plans", s.ListPlans)
	api.POST("/plans", s.CreatePlan)
	api.GET("/plans/:id", s.GetPlan)
	api.PATCH("/plans/:id", s.UpdatePlan)
	api.DELETE("/plans/:id", s.DeletePlan)

	// -------- Payscales --------
	api.GET("/payscales/personal", s.ListPersonalPayscales)
	api.POST("/payscales/personal", s.CreatePersonalPayscale)
	api.PUT("/payscales/personal/:id", s.UpdatePersonalPayscale)
	api.DELETE("/payscales/personal/:id", s.DeletePersonalPayscale)

	api.GET("/payscales/manager", s.ListManagerPayscales)
	api.POST("/payscales/manager", s.CreateManagerPayscale)
	api.PUT("/payscales/manager/:id", s.UpdateManagerPayscale)
	api.DELETE("/payscales/manager/:id", s.DeleteManagerPayscale)

	api.GET("/managers/:id/overrides", s.ListOverrides)
	api.PUT("/managers/:id/overrides", s.SaveOverrides)
	api.GET("/managers/:id/agents", s.ListAssignedAgents)

	// -------- Agents --------
	api.GET("/agents", s.ListAgents)
	api.POST("/agents", s.CreateAgent)
	api.POST("/agents/onboard", s.OnboardAgent)
	api.GET("/agents/:id", s.GetAgent)
	api.PUT("/agents/:id", s.UpdateAgent)
	api.DELETE("/agents/:id", s.DeleteAgent)

	// -------- Audit trail --------
	api.GET("/audit-logs", s.ListAuditLogs)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
