package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/craftbooks/portal-server-go/internal/config"
	"github.com/craftbooks/portal-server-go/internal/database"
	"github.com/craftbooks/portal-server-go/internal/gateway"
	"github.com/craftbooks/portal-server-go/internal/handler"
	"github.com/craftbooks/portal-server-go/internal/jobs"
	"github.com/craftbooks/portal-server-go/internal/mailer"
	"github.com/craftbooks/portal-server-go/internal/middleware"
	"github.com/craftbooks/portal-server-go/internal/redis"
	"github.com/craftbooks/portal-server-go/internal/repository"
	"github.com/craftbooks/portal-server-go/internal/service"
)

func main() {
	runMigrations := flag.Bool("migrate", false, "run database migrations and exit")
	migrationsPath := flag.String("migrations-path", "migrations", "path to migration files")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("ENVIRONMENT") == "production"
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	if *runMigrations {
		if err := database.Migrate(cfg.DatabaseURL, *migrationsPath); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		return
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	tokenRepo := repository.NewPortalTokenRepository(db.DB)
	projectRepo := repository.NewProjectRepository(db.DB)
	estimateRepo := repository.NewEstimateRepository(db.DB)
	invoiceRepo := repository.NewInvoiceRepository(db.DB)

	var linkMailer mailer.LinkMailer
	if cfg.MailAPIURL != "" {
		linkMailer = mailer.NewHTTPMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	} else {
		linkMailer = mailer.LogMailer{}
	}

	paymentGateway := gateway.NewHTTPGateway(cfg.GatewayBaseURL, cfg.GatewaySecretKey)

	tokenService := service.NewTokenService(tokenRepo, linkMailer, cfg.PortalBaseURL, cfg.TokenTTL())
	resourceService := service.NewResourceService(projectRepo, estimateRepo, invoiceRepo)
	estimateService := service.NewEstimateService(estimateRepo)
	paymentService := service.NewPaymentService(invoiceRepo, paymentGateway, cfg.GatewayCurrency)
	rateLimiter := service.NewRateLimiter(redisClient.Client)

	sessionMiddleware := middleware.NewPortalSessionMiddleware(tokenService)
	adminKeyMiddleware := middleware.NewAdminKeyMiddleware(cfg.AdminShareKeyHash)
	sendLinkLimitMiddleware := middleware.NewIPRateLimitMiddleware(
		rateLimiter, config.SendLinkRateLimit, config.SendLinkRateWindow, "send-link",
	)
	csrfMiddleware := middleware.NewCSRFMiddleware(isProduction)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	portalHandler := handler.NewPortalHandler(
		tokenService, resourceService, estimateService, paymentService,
		middleware.NewSendLinkLimiter(), cfg.CompanyName, isProduction,
	)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/portal", func(r chi.Router) {
		r.Use(securityHeadersMiddleware.Handler)
		r.Mount("/", portalHandler.Routes(
			sessionMiddleware.Handler,
			adminKeyMiddleware.Handler,
			sendLinkLimitMiddleware.Handler,
			csrfMiddleware.Handler,
		))
	})

	cleanupJob := jobs.NewCleanupJob(tokenRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
