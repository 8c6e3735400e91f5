package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/busops/identity-service/internal/api"
	"github.com/busops/identity-service/internal/api/handler"
	"github.com/busops/identity-service/internal/core/domain"
	"github.com/busops/identity-service/internal/core/ports"
	"github.com/busops/identity-service/internal/core/service"
	"github.com/busops/identity-service/internal/infrastructure/db/mongo"
	"github.com/busops/identity-service/internal/infrastructure/db/postgres"
	"github.com/busops/identity-service/internal/infrastructure/security"
	"github.com/busops/identity-service/internal/pkg/config"
	"github.com/busops/identity-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Connect to the configured credential store and serve the auth API until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "busops-auth",
		Version: version,
	})
	if cfg.UsesDevSecret() {
		log.Warn().Msg("SECRET_KEY not set, signing tokens with the development key")
	}

	users, checks, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	hasher, err := security.NewPasswordHasher(cfg.Auth.PasswordHasher, cfg.Auth.BcryptCost)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("hasher", cfg.Auth.PasswordHasher).Wrap(err)
	}
	tokens, err := security.NewJWTCodec(security.TokenConfig{Secret: cfg.Auth.SecretKey})
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	authService, err := service.NewAuthService(users, hasher, tokens, service.AuthConfig{
		AccessTTL:   cfg.Auth.AccessTTL(),
		RefreshTTL:  cfg.Auth.RefreshTTL(),
		DefaultRole: domain.Role(cfg.Auth.DefaultRole),
	}, logger.Component("auth"))
	if err != nil {
		return oops.Code("SERVICE_INIT_FAILED").Wrap(err)
	}

	e := api.NewRouter(api.Deps{
		AuthService:    authService,
		Checks:         checks,
		AppName:        cfg.AppName,
		Version:        version,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("store", cfg.StoreDriver).
			Str("hasher", hasher.Algorithm()).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// openStore connects the configured credential store and returns it with its
// readiness checks and a close function.
func openStore(ctx context.Context, cfg *config.Config) (ports.UserRepository, map[string]handler.Pinger, func(), error) {
	log := logger.Component("store")

	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		store, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, err
		}
		users := mongo.NewUserRepository(store.Database())
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = store.Close(context.Background())
			return nil, nil, nil, oops.Code("MONGO_INDEXES_FAILED").Wrap(err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		closeFn := func() {
			if err := store.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("mongodb disconnect failed")
			}
		}
		return users, map[string]handler.Pinger{"mongodb": store}, closeFn, nil

	default:
		pool, err := postgres.Connect(ctx, postgres.Config{
			URL:      cfg.Postgres.URL,
			MaxConns: cfg.Postgres.MaxConns,
			MinConns: cfg.Postgres.MinConns,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Int32("max_conns", pool.Config().MaxConns).Msg("connected to postgres")
		return postgres.NewUserRepository(pool), map[string]handler.Pinger{"postgres": pool}, pool.Close, nil
	}
}
