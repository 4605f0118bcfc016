package main // Entry point package

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/cinemacore/booking/internal/config"
	"github.com/cinemacore/booking/internal/database"
	"github.com/cinemacore/booking/internal/event"
	"github.com/cinemacore/booking/internal/handler"
	"github.com/cinemacore/booking/internal/middleware"
	"github.com/cinemacore/booking/internal/repository"
	"github.com/cinemacore/booking/internal/router"
	"github.com/cinemacore/booking/internal/service"
	"github.com/cinemacore/booking/internal/worker"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("could not ensure schema")
	}

	// Repositories.
	seatRepo := repository.NewSeatLockRepo(db)
	resRepo := repository.NewReservationRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	refundRepo := repository.NewRefundRepo(db)
	pricingRepo := repository.NewPricingRepo(db)
	screenRepo := repository.NewScreenRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	// Event bus and services.
	bus := event.NewBus(log)
	seats := service.NewSeatInventory(seatRepo, screenRepo, bus, log, cfg.LockTTL)
	reservations := service.NewReservations(resRepo, seatRepo, screenRepo, bus, log, cfg.ReservationTTL)
	orders := service.NewOrders(orderRepo, bus, log)
	pricing := service.NewPricing(pricingRepo, cfg.BasePriceCents)
	payments := service.NewPayments(paymentRepo, orderRepo, bus, log)
	refunds := service.NewRefunds(refundRepo, paymentRepo, resRepo, bus, log)
	audit := service.NewAudit(auditRepo, log)

	service.RegisterSubscriptions(bus, seats, reservations, orders, pricing, payments, refunds, audit)
	event.RegisterRelay(bus, log)
	go event.StartNotificationConsumer(log)

	// Background reservation sweeper.
	sweeper := worker.NewSweeper(reservations, cfg.SweepInterval, log)
	go sweeper.Run(ctx)

	// Redis-backed rate limiting and response caching degrade to no-ops
	// when Redis is unreachable.
	var cacheMW, rateMW echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		if rlCfg := config.LoadRateLimitConfig(); rlCfg.Enabled {
			rateMW = middleware.NewTokenBucket(rlCfg, rdb)
		}
		if cCfg := config.LoadCacheConfig(); cCfg.Enabled {
			cacheMW = middleware.NewRedisCache(cCfg, rdb)
		}
	} else {
		log.Warn("redis unavailable; rate limiting and caching disabled")
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterBooking(e, handler.NewSeatHandler(seats), handler.NewReservationHandler(reservations, bus), handler.NewOrderHandler(orders, payments, bus), handler.NewRefundHandler(refunds, reservations), cfg.JWTSecret, cacheMW, rateMW)

	go func() {
		<-ctx.Done()
		bus.Wait()
		_ = e.Shutdown(context.Background())
	}()

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Info("server stopped")
	}
}
