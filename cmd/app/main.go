package main

import (
	"context"
	"log"
	"time"

	"github.com/ramyradad1/lessence-monorepo-sub002/external/midtrans"
	"github.com/ramyradad1/lessence-monorepo-sub002/external/resend"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/config"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/db"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/events"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/metrics"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/middleware"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/repository"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// ======================
	// CONFIG
	// ======================
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	middleware.SetSecret(cfg.JWTSecret)

	// ======================
	// INFRA
	// ======================
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()

	m := metrics.NewCheckoutMetrics()

	// ======================
	// EXTERNALS
	// ======================
	snapClient := midtrans.NewSnapClient(cfg.MidtransServerKey, cfg.MidtransEnv)

	var mailer services.Mailer
	if cfg.ResendAPIKey != "" {
		rm, err := resend.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
		if err != nil {
			logger.Fatal("init mailer", zap.Error(err))
		}
		mailer = rm
	}

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer producer.Close()

	// ======================
	// REPOSITORIES
	// ======================
	catalogRepo := repository.NewCatalogRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	addressRepo := repository.NewAddressRepository(pool)

	// ======================
	// SERVICES
	// ======================
	pricingSvc := services.NewPricingService(catalogRepo, couponRepo)
	orderSvc := services.NewOrderService(
		pool, orderRepo, paymentRepo, inventoryRepo, couponRepo, cartRepo,
		producer, mailer, m, logger,
	)
	checkoutSvc := services.NewCheckoutService(
		pricingSvc, inventoryRepo, sessionRepo, addressRepo, orderSvc,
		snapClient, m, logger,
	)
	paymentSvc := services.NewPaymentService(
		sessionRepo, paymentRepo, addressRepo, orderSvc,
		cfg.MidtransServerKey, m, logger,
	)
	cartSvc := services.NewCartService(cartRepo, catalogRepo)

	// Abandoned sessions hold no stock, so cleanup is just hygiene.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			n, err := sessionRepo.PurgeAbandoned(ctx, time.Now().Add(-24*time.Hour))
			if err != nil {
				logger.Warn("purge abandoned sessions", zap.Error(err))
			} else if n > 0 {
				logger.Info("purged abandoned sessions", zap.Int64("count", n))
			}
		}
	}()

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(200, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/shop")

	// ======================
	// ROUTES (ONLY REGISTRATION)
	// ======================
	registerCheckoutRoutes(api, checkoutSvc, cartSvc, checkoutDefaults{
		SuccessURL: cfg.SuccessURL,
		CancelURL:  cfg.CancelURL,
	})
	registerOrderRoutes(api, checkoutSvc, orderSvc)
	registerPaymentRoutes(api, paymentSvc)
	registerCouponRoutes(api, pricingSvc)
	registerCartRoutes(api, cartSvc)
	registerAddressRoutes(api, addressRepo)

	// ======================
	// SERVER
	// ======================
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return zcfg.Build()
}
