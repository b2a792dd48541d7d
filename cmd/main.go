package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dacsanviet/api/handler"
	apiMiddleware "dacsanviet/api/middleware"
	"dacsanviet/api/routes"
	"dacsanviet/config"
	"dacsanviet/internal/repository"
	"dacsanviet/internal/service"
	"dacsanviet/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	validate := validator.New()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	db := config.ConnectionDb(cfg.DatabaseURL)
	if err := config.Migrate(db); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	tokenManager := utils.TokenManager{
		Secret:          []byte(cfg.JWTSecret),
		PreviousSecret:  []byte(cfg.JWTPreviousSecret),
		Issuer:          cfg.JWTIssuer,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		PurposeTokenTTL: cfg.PurposeTokenTTL,
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	productRepo := repository.NewProductRepository(db)
	uow := repository.NewUnitOfWork(db)

	emailSender := service.NewResendEmailSender(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppName)
	passwordHasher := service.BcryptPasswordHasher{}
	clock := service.RealClock{}

	authConfig := service.AuthConfig{
		SessionTTL:    cfg.SessionTTL,
		OTPTTL:        cfg.OTPTTL,
		OTPCodeLength: cfg.OTPCodeLength,
		OTPRateWindow: cfg.OTPRateWindow,
		OTPRateMax:    cfg.OTPRateMax,
	}

	var challenge service.ChallengeTransport
	if cfg.OTPTransport == config.TransportToken {
		challenge = service.NewTokenChallengeTransport(tokenManager, emailSender, clock, authConfig, logger)
	} else {
		challenge = service.NewLedgerChallengeTransport(otpRepo, emailSender, clock, authConfig, logger)
	}

	authService := service.NewAuthService(userRepo, sessionRepo, uow, challenge, emailSender, passwordHasher, tokenManager, clock, authConfig, logger)
	profileService := service.NewProfileService(userRepo, uow, challenge, passwordHasher, clock, logger)
	userService := service.NewUserService(userRepo, sessionRepo, uow, clock, logger)
	productService := service.NewProductService(productRepo, logger)
	sweeper := service.NewSweeper(otpRepo, sessionRepo, clock, cfg.SweepInterval, logger)

	authHandler := handler.NewAuthHandler(authService, validate)
	profileHandler := handler.NewProfileHandler(profileService, validate)
	userHandler := handler.NewUserHandler(userService, validate)
	sessionHandler := handler.NewSessionHandler(userService, sweeper)
	productHandler := handler.NewProductHandler(productService)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{Tokens: &tokenManager}
	router := routes.NewRouter(app, authHandler, profileHandler, userHandler, sessionHandler, productHandler, authMiddleware)
	router.RegisterRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweeper.Run(ctx)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("shutdown")
		}
	}()

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Fatal("server stopped")
	}
}
