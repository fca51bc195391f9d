package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cinemahub/booking-api/internal/config"
	"github.com/cinemahub/booking-api/internal/database"
	"github.com/cinemahub/booking-api/internal/handler"
	"github.com/cinemahub/booking-api/internal/middleware"
	"github.com/cinemahub/booking-api/internal/queue"
	"github.com/cinemahub/booking-api/internal/repository"
	"github.com/cinemahub/booking-api/internal/router"
	"github.com/cinemahub/booking-api/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	posters, err := storage.NewPosterStore(cfg.PosterDir)
	if err != nil {
		log.Fatalf("poster store: %v", err)
	}

	// Redis is optional; cache and rate limiting degrade to pass-through
	// when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	movieRepo := repository.NewMovieRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	screeningRepo := repository.NewScreeningRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewSessionTokenRepo(db)

	h := router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, userRepo, tokenRepo),
		Movies:     handler.NewMovieHandler(movieRepo, screeningRepo, roomRepo, bookingRepo, posters, cacheCfg, rdb),
		Screenings: handler.NewScreeningHandler(movieRepo, roomRepo, screeningRepo, bookingRepo, cacheCfg, rdb),
		Rooms:      handler.NewRoomHandler(roomRepo),
	}

	e := echo.New()
	e.Use(middleware.Metrics())
	e.Use(middleware.NewTokenBucket(rateCfg, rdb))
	router.RegisterRoutes(e, h, cfg.JWTSecret, tokenRepo, middleware.NewResponseCache(cacheCfg, rdb))

	// Background consumer for screening.scheduled events. It reconnects on
	// its own and never brings the server down.
	go func() {
		if err := queue.StartScreeningConsumer(); err != nil {
			log.Printf("screening consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
