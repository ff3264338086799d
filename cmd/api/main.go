package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"eventlistings/config"
	_ "eventlistings/docs"
	"eventlistings/internal/adapters/auth"
	"eventlistings/internal/adapters/email"
	delivery "eventlistings/internal/delivery/http"
	"eventlistings/internal/delivery/http/controllers"
	"eventlistings/internal/delivery/http/middleware"
	"eventlistings/internal/repository/postgres"
	"eventlistings/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title Event Listings API
// @version 1.0
// @description CRUD backend for event listing and registration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	userRepo := postgres.NewUserRepository(db)

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokenCodec := auth.NewJWTCodec(cfg.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    "Event Listings",
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	eventService := services.NewEventService(eventRepo, serviceTimeout)
	categoryService := services.NewCategoryService(categoryRepo, eventRepo, serviceTimeout)
	userService := services.NewUserService(userRepo, hasher, tokenCodec, cfg.TokenExpiry, emailService, serviceTimeout)

	mux := delivery.NewRouter(
		controllers.NewEventController(logger, eventService),
		controllers.NewCategoryController(logger, categoryService),
		controllers.NewAuthController(logger, userService),
		controllers.NewUserController(logger, userService),
		tokenCodec,
	)
	handler := middleware.CORS(cfg.CORSAllowedOrigins,
		middleware.RequestID(middleware.Logging(logger, mux)))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
