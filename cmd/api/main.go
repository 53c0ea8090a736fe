// @title                       Accounts API
// @version                     1.0
// @description                 User registration, login and profile management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-api/internal/api"
	"github.com/99minutos/accounts-api/internal/api/handler"
	"github.com/99minutos/accounts-api/internal/core/ports"
	"github.com/99minutos/accounts-api/internal/core/service"
	"github.com/99minutos/accounts-api/internal/infrastructure/config"
	mongostore "github.com/99minutos/accounts-api/internal/infrastructure/db/mongo"
	"github.com/99minutos/accounts-api/internal/infrastructure/db/postgres"
	"github.com/99minutos/accounts-api/internal/infrastructure/security"
	"github.com/99minutos/accounts-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "accounts-api"})
		boot.Fatal().Err(err).Msg("config load")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "accounts-api",
	})

	hasher, err := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("password hasher")
	}
	tokens, err := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token issuer")
	}

	repo, checks, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	authService, err := service.NewAuthService(repo, hasher, tokens, logger.Component("auth"))
	if err != nil {
		log.Fatal().Err(err).Msg("auth service")
	}

	e := api.NewRouter(api.Deps{
		AuthService: authService,
		Tokens:      tokens,
		Checks:      checks,
		Log:         logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}

// openStore connects the configured credential store and returns it with its
// readiness probe and a cleanup func.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.UserRepository, map[string]handler.HealthCheck, func()) {
	switch cfg.Store {
	case config.StoreMongo:
		db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connect")
		}
		repo := mongostore.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("mongo indexes")
		}
		checks := map[string]handler.HealthCheck{
			"mongo": func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
		}
		return repo, checks, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := mongostore.Disconnect(closeCtx, db); err != nil {
				log.Error().Err(err).Msg("mongo disconnect")
			}
		}
	default:
		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(cfg.Postgres.URL); err != nil {
				log.Fatal().Err(err).Msg("postgres migrate")
			}
			log.Info().Msg("migrations applied")
		}
		pool, err := postgres.Connect(ctx, postgres.Config{
			URL:      cfg.Postgres.URL,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect")
		}
		checks := map[string]handler.HealthCheck{
			"postgres": pool.Ping,
		}
		return postgres.NewUserRepository(pool), checks, pool.Close
	}
}
