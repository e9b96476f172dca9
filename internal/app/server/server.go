package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/PowerQR/internal/app/service"
	inthttp "github.com/sifan077/PowerQR/internal/http/handler"
	"github.com/sifan077/PowerQR/internal/http/middleware"
	httpUtil "github.com/sifan077/PowerQR/internal/http/util"
	"go.uber.org/zap"
)

// Dependencies bundles the services and clients required by the HTTP server.
type Dependencies struct {
	Logger        *zap.Logger
	Redis         redis.Cmdable
	RateLimit     int
	Scans         service.ScanService
	QRCodes       service.QRCodeService
	Analytics     service.AnalyticsService
	Tokens        *httpUtil.TokenSigner
	PublicBaseURL string
	// TrustedProxies may set X-Forwarded-For; when empty c.IP() is the peer address.
	TrustedProxies []string
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with the gateway and owner routes.
func New(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	cfg := fiber.Config{
		AppName:               "PowerQR",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	}
	if len(deps.TrustedProxies) > 0 {
		cfg.ProxyHeader = fiber.HeaderXForwardedFor
		cfg.EnableTrustedProxyCheck = true
		cfg.TrustedProxies = deps.TrustedProxies
		cfg.EnableIPValidation = true
	}
	app := fiber.New(cfg)

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(
		middleware.RequestID(),
		middleware.Recovery(s.deps.Logger),
		middleware.Logger(s.deps.Logger),
		middleware.CORS(),
	)
	if s.deps.Redis != nil {
		cfg := middleware.DefaultRateLimitConfig()
		if s.deps.RateLimit > 0 {
			cfg.MaxRequests = s.deps.RateLimit
		}
		s.app.Use(middleware.RateLimit(s.deps.Redis, cfg, s.deps.Logger))
	}
}

func (s *Server) registerRoutes() {
	// owner routes first: the gateway owns the catch-all root paths
	apiHandler := inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:        s.deps.Logger,
		QRCodes:       s.deps.QRCodes,
		Analytics:     s.deps.Analytics,
		Tokens:        s.deps.Tokens,
		PublicBaseURL: s.deps.PublicBaseURL,
	})
	apiHandler.Register(s.app)

	gatewayHandler := inthttp.NewGatewayHandler(inthttp.GatewayDeps{
		Logger: s.deps.Logger,
		Scans:  s.deps.Scans,
	})
	gatewayHandler.Register(s.app)
}
