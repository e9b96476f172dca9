package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sifan077/PowerQR/config"
	"github.com/sifan077/PowerQR/internal/app/geo"
	appmodel "github.com/sifan077/PowerQR/internal/app/model"
	apprepository "github.com/sifan077/PowerQR/internal/app/repository"
	appserver "github.com/sifan077/PowerQR/internal/app/server"
	appservice "github.com/sifan077/PowerQR/internal/app/service"
	httpUtil "github.com/sifan077/PowerQR/internal/http/util"
	"github.com/sifan077/PowerQR/internal/infra/logger"
	infraNATS "github.com/sifan077/PowerQR/internal/infra/nats"
	infraPostgres "github.com/sifan077/PowerQR/internal/infra/postgres"
	infraPrometheus "github.com/sifan077/PowerQR/internal/infra/prometheus"
	infraRedis "github.com/sifan077/PowerQR/internal/infra/redis"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logCfg := logger.FromEnv()
	log := logger.MustInit(logCfg)
	defer func() { _ = logger.Sync() }()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("postgres_user", cfg.Postgres.User),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
		zap.String("public_base_url", cfg.App.PublicBaseURL),
		zap.Duration("geo_timeout", cfg.Geo.Timeout),
	)

	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty; the owner API will reject every request")
	}

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.QRCode{}, &appmodel.ScanEvent{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS, log)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

	if err := infraNATS.EnsureStream(js, appservice.ScanStreamSpec()); err != nil {
		log.Fatal("Failed to prepare scan stream", zap.Error(err))
	}

	if !logCfg.Development {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	locator, closeLocator := buildLocator(cfg.Geo, redisClient, log)
	defer closeLocator()

	qrRepo := apprepository.NewQRCodeRepository(gormDB)
	scanRepo := apprepository.NewScanEventRepository(gormDB)
	statsRepo := apprepository.NewScanStatsRepository(pool)
	counterRepo := apprepository.NewScanCounterRepository(redisClient)

	scanService := appservice.NewScanService(appservice.ScanDeps{
		Logger:     log,
		Codes:      qrRepo,
		Scans:      scanRepo,
		Locator:    locator,
		GeoTimeout: cfg.Geo.Timeout,
		Notifier:   appservice.NewScanPublisher(js, cfg.NATS.PublishTimeout),
	})

	consumer := appservice.NewScanConsumer(js, log, counterRepo)
	if err := consumer.Start(ctx); err != nil {
		log.Fatal("Failed to start scan consumer", zap.Error(err))
	}

	reconciler := appservice.NewCounterReconciler(log, statsRepo, counterRepo, cfg.App.CounterReconcileInterval)
	reconciler.Start()
	defer reconciler.Stop()

	server := appserver.New(appserver.Dependencies{
		Logger:         log,
		Redis:          redisClient,
		RateLimit:      cfg.App.RateLimit,
		Scans:          scanService,
		QRCodes:        appservice.NewQRCodeService(qrRepo, counterRepo),
		Analytics:      appservice.NewAnalyticsService(statsRepo, nil),
		Tokens:         httpUtil.NewTokenSigner([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer),
		PublicBaseURL:  cfg.App.PublicBaseURL,
		TrustedProxies: cfg.App.TrustedProxies,
	})

	go func() {
		<-ctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("Graceful shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Info("Starting HTTP server", zap.String("addr", addr))
	if err := server.Listen(addr); err != nil {
		log.Error("Fiber server exited", zap.Error(err))
	}
}

// buildLocator chains the local MaxMind database (when configured) before the
// HTTP provider, with a Redis cache in front of both.
func buildLocator(cfg config.GeoConfig, rdb redis.Cmdable, log *zap.Logger) (geo.Locator, func()) {
	var chain geo.Chain
	closeFn := func() {}

	if cfg.MMDBPath != "" {
		mm, err := geo.OpenMaxMind(cfg.MMDBPath)
		if err != nil {
			log.Warn("MaxMind database unavailable, continuing without it", zap.Error(err))
		} else {
			chain = append(chain, mm)
			closeFn = func() { _ = mm.Close() }
		}
	}

	if cfg.Endpoint != "" {
		chain = append(chain, geo.NewHTTPLocator(geo.HTTPConfig{
			Endpoint:  cfg.Endpoint,
			UserAgent: cfg.UserAgent,
			Logger:    log,
		}))
	}

	if len(chain) == 0 {
		log.Warn("No geolocation provider configured; scans will record Unknown locations")
		return nil, closeFn
	}

	return geo.NewCachedLocator(chain, rdb, cfg.CacheTTL, log), closeFn
}
