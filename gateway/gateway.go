package gateway

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/example/possales/pkg/analytics"
	"github.com/example/possales/pkg/audit"
	"github.com/example/possales/pkg/config"
	"github.com/example/possales/pkg/models"
	"github.com/example/possales/pkg/orders"
	"github.com/example/possales/pkg/repository"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/example/possales/docs"
)

//go:embed templates/*.html
var templatesFS embed.FS

type OrderService interface {
	Finalize(ctx context.Context, userID uint, cart []orders.CartItem) (*models.Order, error)
	History(ctx context.Context, userID uint) ([]models.Order, error)
	Order(ctx context.Context, orderID, userID uint) (*models.Order, error)
	Catalog(ctx context.Context) ([]models.Product, error)
}

type AnalyticsService interface {
	Report(ctx context.Context, asOf time.Time) (*analytics.Report, error)
	Invalidate(ctx context.Context)
	Today() time.Time
	Location() *time.Location
}

type AuthService interface {
	Signup(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	TokenTTL() time.Duration
}

type RateLimiter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Auditor interface {
	Record(e audit.Event)
}

type AuditReader interface {
	GetAuditLogs(ctx context.Context, entityID uint, limit int64) ([]*repository.AuditLog, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services behind the HTTP surface. Limiter, Auditor and
// AuditLogs are optional.
type Dependencies struct {
	Orders    OrderService
	Analytics AnalyticsService
	Auth      AuthService
	Database  Pinger
	Limiter   RateLimiter
	Auditor   Auditor
	AuditLogs AuditReader
}

type Gateway struct {
	config *config.Config
	deps   Dependencies
	logger *zap.Logger
	router *gin.Engine
	server *http.Server
}

func NewGateway(cfg *config.Config, logger *zap.Logger, deps Dependencies) (*Gateway, error) {
	if deps.Orders == nil || deps.Analytics == nil || deps.Auth == nil || deps.Database == nil {
		return nil, errors.New("gateway: orders, analytics, auth and database are required")
	}
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(logger))
	router.SetHTMLTemplate(tmpl)

	g := &Gateway{
		config: cfg,
		deps:   deps,
		logger: logger,
		router: router,
		server: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	g.setupRoutes()
	return g, nil
}

func (g *Gateway) setupRoutes() {
	g.router.GET("/", g.index)
	g.router.GET("/health", g.health)

	limited := g.router.Group("", g.rateLimit())
	{
		limited.POST("/login", g.login)
		limited.POST("/signup", g.signup)
	}
	g.router.GET("/login", g.loginPage)
	g.router.GET("/signup", g.signupPage)
	g.router.GET("/logout", g.logout)

	g.router.GET("/invoice", g.catalog)

	authed := g.router.Group("", g.requireAuth())
	{
		authed.POST("/invoice", g.finalizeOrder)
		authed.GET("/history", g.history)
		authed.GET("/history/:id/audit", g.orderAudit)
		authed.GET("/analytics", g.analytics)
	}

	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (g *Gateway) Start() error {
	g.logger.Info("Gateway starting", zap.String("address", g.server.Addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}
