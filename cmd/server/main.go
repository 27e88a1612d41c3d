package main // Entry point package

import (
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/MM-miles16/MMMILES/internal/config"
    "github.com/MM-miles16/MMMILES/internal/database"
    "github.com/MM-miles16/MMMILES/internal/handler"
    "github.com/MM-miles16/MMMILES/internal/middleware"
    "github.com/MM-miles16/MMMILES/internal/queue"
    "github.com/MM-miles16/MMMILES/internal/repository"
    "github.com/MM-miles16/MMMILES/internal/router"
    "github.com/MM-miles16/MMMILES/internal/service"
)

func main() {
    _ = godotenv.Load() // .env is optional; real deployments set the environment directly
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("db: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient() // nil disables rate limiting and caching
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting and response cache disabled")
    }

    // Repositories.
    lockRepo := repository.NewLockRepo(db)
    vehicleRepo := repository.NewVehicleRepo(db)
    userRepo := repository.NewUserRepo(db)
    otpRepo := repository.NewOTPRepo(db)
    bookingRepo := repository.NewBookingRepo(db)
    couponRepo := repository.NewCouponRepo(db)
    hostRepo := repository.NewHostRepo(db)

    // Lock manager and the scheduled sweeper.
    mgr := service.NewLockManager(lockRepo,
        time.Duration(cfg.LockLeaseMin)*time.Minute,
        time.Duration(cfg.LockRetentionHours)*time.Hour)
    sweeper := service.NewSweeper(mgr, otpRepo, cfg.SweepSchedule)
    if err := sweeper.Start(); err != nil {
        log.Fatalf("sweeper: %v", err)
    }
    defer sweeper.Stop()

    // Booking audit consumer runs for the lifetime of the process and
    // reconnects on broker failures.
    go func() {
        if err := queue.StartBookingConsumer(); err != nil {
            log.Printf("booking consumer stopped: %v", err)
        }
    }()

    // Handlers.
    authH := handler.NewAuthHandler(cfg, userRepo, otpRepo, handler.LogOTPNotifier{})
    lockH := handler.NewLockHandler(mgr)
    vehicleH := handler.NewVehicleHandler(vehicleRepo, couponRepo)
    bookingH := handler.NewBookingHandler(lockRepo, bookingRepo, vehicleRepo, couponRepo)
    couponH := handler.NewCouponHandler(couponRepo)
    hostH := handler.NewHostHandler(hostRepo)
    profileH := handler.NewProfileHandler(userRepo)

    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, limiter)
    router.RegisterPublic(e, vehicleH, couponH, hostH, lockH, cache)
    router.RegisterProtected(e, lockH, bookingH, profileH, hostH, cfg.JWTSecret, limiter)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
