package main

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/gig-market/internal/config"
	"github.com/iliyamo/gig-market/internal/database"
	"github.com/iliyamo/gig-market/internal/handler"
	"github.com/iliyamo/gig-market/internal/middleware"
	"github.com/iliyamo/gig-market/internal/queue"
	"github.com/iliyamo/gig-market/internal/realtime"
	"github.com/iliyamo/gig-market/internal/repository"
	"github.com/iliyamo/gig-market/internal/router"
	"github.com/iliyamo/gig-market/internal/service"
	"github.com/iliyamo/gig-market/internal/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	store := repository.NewSQLStore(db)
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry)
	publisher := queue.NewPublisher(cfg.AMQPURL)

	gigSvc := service.NewGigService(store, dispatcher)
	bidSvc := service.NewBidService(store, dispatcher)
	hireSvc := service.NewHireService(store, dispatcher, publisher)

	go queue.StartAssignmentConsumer(cfg.AMQPURL)

	rlCfg := config.LoadRateLimitConfig()
	rdb := config.NewRedisClient()
	if rlCfg.Enabled && rdb == nil {
		log.Warn("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(rlCfg, rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	router.Register(e,
		handler.NewGigHandler(gigSvc),
		handler.NewBidHandler(bidSvc, hireSvc),
		handler.NewWSHandler(registry, cfg.JWTSecret, cfg.WSSkipOriginCheck),
		cfg.JWTSecret,
		limiter,
	)

	addr := ":" + cfg.Port
	log.WithFields(log.Fields{"addr": addr, "env": cfg.Env}).Info("server starting")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
