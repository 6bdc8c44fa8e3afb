package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/account"
	accountdomain "github.com/carnefacil/carnefacil/internal/account/domain"
	"github.com/carnefacil/carnefacil/internal/booklet"
	bookletdomain "github.com/carnefacil/carnefacil/internal/booklet/domain"
	"github.com/carnefacil/carnefacil/internal/config"
	"github.com/carnefacil/carnefacil/internal/observability"
	obsmiddleware "github.com/carnefacil/carnefacil/internal/observability/logger"
	obsmetrics "github.com/carnefacil/carnefacil/internal/observability/metrics"
	obstracing "github.com/carnefacil/carnefacil/internal/observability/tracing"
	"github.com/carnefacil/carnefacil/internal/payment"
	paymentdomain "github.com/carnefacil/carnefacil/internal/payment/domain"
	"github.com/carnefacil/carnefacil/internal/providers/pdf"
	"github.com/carnefacil/carnefacil/internal/ratelimit"
	"github.com/carnefacil/carnefacil/internal/subscription"
	subscriptiondomain "github.com/carnefacil/carnefacil/internal/subscription/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	account.Module,
	subscription.Module,
	booklet.Module,
	payment.Module,
	pdf.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	genID           *snowflake.Node
	accountSvc      accountdomain.Service
	subscriptionSvc subscriptiondomain.Service
	bookletSvc      bookletdomain.Service
	paymentSvc      paymentdomain.Service
	pdfProvider     pdf.Provider
	loginLimiter    *ratelimit.LoginLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	GenID           *snowflake.Node
	AccountSvc      accountdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	BookletSvc      bookletdomain.Service
	PaymentSvc      paymentdomain.Service
	PDFProvider     pdf.Provider
	LoginLimiter    *ratelimit.LoginLimiter `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		genID:           p.GenID,
		accountSvc:      p.AccountSvc,
		subscriptionSvc: p.SubscriptionSvc,
		bookletSvc:      p.BookletSvc,
		paymentSvc:      p.PaymentSvc,
		pdfProvider:     p.PDFProvider,
		loginLimiter:    p.LoginLimiter,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.LoginRateLimit(), s.Login)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// Public: the correlation token in the query string is the only
	// credential the provider return carries.
	api.GET("/pagamento-sucesso", s.PaymentReturnRateLimit(), s.PaymentSuccess)

	// Token only: an expired subscriber must still be able to see their
	// status and pay for a renewal.
	api.GET("/status-assinatura", s.AuthRequired(), s.SubscriptionStatus)
	api.POST("/criar-pagamento", s.AuthRequired(), s.CreatePayment)

	// Token + active subscription.
	gated := api.Group("", s.AuthRequired(), s.SubscriptionRequired())
	gated.GET("/dashboard", s.Dashboard)
	gated.POST("/cadastrar", s.CreateBooklet)
	gated.GET("/carne/:id/parcelas", s.ListInstallments)
	gated.GET("/carne/:id/pdf", s.BookletPDF)
	gated.PUT("/parcela/:id", s.ToggleInstallment)
}
