package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/fitness-api/docs" // Swagger docs (generated)
	"github.com/redmonkez12/fitness-api/internal/auth"
	"github.com/redmonkez12/fitness-api/internal/config"
	"github.com/redmonkez12/fitness-api/internal/database"
	"github.com/redmonkez12/fitness-api/internal/email"
	"github.com/redmonkez12/fitness-api/internal/health"
	httpServer "github.com/redmonkez12/fitness-api/internal/http"
	"github.com/redmonkez12/fitness-api/internal/integrations/fooddata"
	"github.com/redmonkez12/fitness-api/internal/integrations/googlefit"
	"github.com/redmonkez12/fitness-api/internal/integrations/weather"
	"github.com/redmonkez12/fitness-api/internal/logging"
	"github.com/redmonkez12/fitness-api/internal/otp"
	"github.com/redmonkez12/fitness-api/internal/ratelimit"
	"github.com/redmonkez12/fitness-api/internal/user"
)

// @title           Fitness API
// @version         1.0
// @description     Fitness tracking backend: OTP signup, sessions, health metrics, sleep and food logs, and proxies to weather, Google Fit and USDA food data.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:5000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_type", cfg.Auth.TokenType,
		"timezone", cfg.Server.Timezone,
	)

	// Initialize database connection and schema
	db, err := database.Open(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis connection
	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	otpRepo := otp.NewRepository(db)
	healthRepo := health.NewRepository(db)
	passwordResetRepo := auth.NewPasswordResetRepository(redisClient)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.Server.TrustedProxies...)

	// Initialize session tokens
	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	issuer := auth.NewIssuer(tokens, cfg.Auth.SessionTokenDuration)

	// Initialize email service
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FrontendURL,
	)

	// Initialize OTP manager and its expiry sweeper
	otpManager := otp.NewManager(otpRepo, emailService, logger, cfg.Auth.OTPTTL)
	go otpManager.RunSweeper(ctx, cfg.Auth.OTPSweepPeriod)

	// Initialize services
	authService := auth.NewService(
		userRepo,
		otpManager,
		issuer,
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		passwordResetRepo,
		emailService,
		logger,
	)
	healthService := health.NewService(healthRepo, userRepo, cfg.Server.Location(), logger)

	// Initialize HTTP handlers
	handlers := httpServer.Handlers{
		Auth:           auth.NewHandler(authService, rateLimiter, cfg.Auth.ResetCooldown),
		AuthMiddleware: auth.NewMiddleware(issuer),
		Health:         health.NewHandler(healthService),
		Weather:        weather.NewHandler(weather.NewClient(cfg.Weather)),
		GoogleFit: googlefit.NewHandler(
			googlefit.NewClient(cfg.Google),
			cfg.Email.FrontendURL,
			!cfg.Server.IsDevelopment(), // secure cookies outside dev
		),
		FoodData: fooddata.NewHandler(fooddata.NewClient(cfg.FoodData)),
		Limiter:  rateLimiter,
	}

	// Initialize router
	router := httpServer.NewRouter(cfg, handlers, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		// Stop the sweeper before draining requests
		cancel()

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
