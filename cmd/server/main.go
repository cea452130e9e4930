package main // Entry point package

import (
    "context"
    "log"
    "os"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/avillegasn/agenda-api/internal/calendar"
    "github.com/avillegasn/agenda-api/internal/config"
    "github.com/avillegasn/agenda-api/internal/database"
    "github.com/avillegasn/agenda-api/internal/handler"
    "github.com/avillegasn/agenda-api/internal/mailer"
    "github.com/avillegasn/agenda-api/internal/middleware"
    "github.com/avillegasn/agenda-api/internal/queue"
    "github.com/avillegasn/agenda-api/internal/repository"
    "github.com/avillegasn/agenda-api/internal/router"
    "github.com/avillegasn/agenda-api/internal/service"
)

func main() {
    _ = godotenv.Load() // .env is optional; real deployments use the environment

    cfg := config.Load()
    logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "agenda-api").Logger()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    hours := cfg.Hours()
    if !hours.Valid() {
        log.Fatalf("invalid business hours: %d-%d every %d minutes", hours.StartHour, hours.EndHour, hours.SlotMinutes)
    }

    provider := calendar.NewGoogleClient(context.Background(), calendar.GoogleConfig{
        ClientID:     cfg.GoogleClientID,
        ClientSecret: cfg.GoogleClientSecret,
        RefreshToken: cfg.GoogleRefreshToken,
        CalendarID:   cfg.CalendarID,
    })

    var mail mailer.Mailer
    if cfg.ResendAPIKey != "" {
        mail = mailer.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
    } else {
        logger.Warn().Msg("RESEND_API_KEY not set, outbound email disabled")
    }

    events := repository.NewEventRepo(db)
    regs := repository.NewRegistrationRepo(db)

    machine := service.NewStateMachine(cfg.StudentDomains, cfg.InstitutionalDomain)
    avail := service.NewAvailability(provider, events, regs, hours, cfg.ProviderTimeout, logger)
    orch := service.NewOrchestrator(regs, provider, mail, queue.PublishRegistrationConfirmed,
        hours, cfg.OperatorEmail, cfg.ProviderTimeout, logger)
    regSvc := service.NewRegistrationService(service.RegistrationDeps{
        Store:         regs,
        Events:        events,
        Machine:       machine,
        Orchestrator:  orch,
        Availability:  avail,
        Mailer:        mail,
        Hours:         hours,
        CheckoutURL:   cfg.CheckoutURL,
        PublicBaseURL: cfg.PublicBaseURL,
        VerifySecret:  cfg.JWTSecret,
        Logger:        logger,
    })

    secrets := config.NewEnvSecrets(5 * time.Minute)

    e := echo.New()
    e.HideBanner = true
    e.Validator = handler.NewRequestValidator()

    // Redis is optional: without it the availability cache and the rate
    // limiter are simply not installed.
    var cacheMW, limitMW echo.MiddlewareFunc
    if rdb := config.NewRedisClient(); rdb != nil {
        cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
        limitMW = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    } else {
        logger.Warn().Msg("redis unavailable, response cache and rate limiting disabled")
    }

    router.RegisterRoutes(e)
    router.RegisterPublic(e,
        handler.NewAvailabilityHandler(avail),
        handler.NewAppointmentHandler(regSvc),
        handler.NewRegistrationHandler(regSvc),
        handler.NewWebhookHandler(regSvc, secrets, 5*time.Minute),
        cacheMW, limitMW,
    )
    router.RegisterAdmin(e, handler.NewAdminHandler(cfg, regSvc, events), cfg.JWTSecret)

    // Consume confirmation events in the background; the consumer keeps
    // its own reconnect loop.
    go func() {
        if err := queue.StartRegistrationConsumer(); err != nil {
            logger.Error().Err(err).Msg("registration consumer stopped")
        }
    }()

    addr := ":" + cfg.Port
    logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
