package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"recipebook/internal/app/di"
	"recipebook/internal/app/router"
	"recipebook/internal/config"
	authadapters "recipebook/internal/feature/auth/adapters"
	authentity "recipebook/internal/feature/auth/domain/entity"
	authhandler "recipebook/internal/feature/auth/transport/handler"
	authusecase "recipebook/internal/feature/auth/usecase"
	recipeadapters "recipebook/internal/feature/recipes/adapters"
	recipeentity "recipebook/internal/feature/recipes/domain/entity"
	recipehandler "recipebook/internal/feature/recipes/transport/handler"
	recipeusecase "recipebook/internal/feature/recipes/usecase"
	"recipebook/internal/platform/cache"
	platformdb "recipebook/internal/platform/db"
	jwtmw "recipebook/internal/platform/jwt"
	"recipebook/internal/platform/logging"
	"recipebook/internal/platform/metrics"
	platformredis "recipebook/internal/platform/redis"
	"recipebook/internal/platform/render"
	"recipebook/internal/shared/ratelimiter"
)

// sweepInterval is how often expired sessions are purged.
const sweepInterval = 15 * time.Minute

func main() {
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.OpenDB(cfg, &authentity.User{}, &authadapters.SessionModel{}, &recipeentity.Recipe{})
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to get sql.DB", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Redis
	var rdb *redisv9.Client
	if addr := cfg.RedisAddr(); addr != "" {
		if tmp, err := platformredis.NewRedisClient(addr, cfg.RedisPassword); err != nil {
			slog.Warn("Redis unavailable. Storing sessions in the database.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	files, err := di.NewFileStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to create file store", "error", err)
		os.Exit(1)
	}

	views, err := render.New(cfg.ImageBaseURL())
	if err != nil {
		slog.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}
	m := metrics.New()
	signer := jwtmw.NewSigner(cfg.SessionSecret, cfg.SessionTTL)

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	sessionRepo := di.NewSessionRepository(rdb, db)
	recipeRepo := cache.NewCachingRecipeRepository(rdb, cfg.CacheTTL, recipeadapters.NewRecipeRepository(db), "recipes")

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, cfg.SessionTTL)
	recipeUC := recipeusecase.NewRecipeUsecase(recipeRepo, files, cfg.UploadPrefix)

	// Handler
	authH := authhandler.NewAuthHandler(authUC, signer, views, m, cfg.CookieSecure)
	recipeH := recipehandler.NewRecipeHandler(recipeUC, views, m, recipehandler.Options{
		MostRecentFirst: cfg.RecipesMostRecentFirst,
		EditingEnabled:  cfg.RecipeEditingEnabled,
	})

	opts := router.Options{EditingEnabled: cfg.RecipeEditingEnabled}
	if cfg.UploadBackend == config.UploadLocal {
		opts.UploadRoot = cfg.UploadRoot
	}
	deps := router.Deps{
		Auth:     authH,
		Recipes:  recipeH,
		Signer:   signer,
		Sessions: authUC,
		DB:       sqlDB,
		Metrics:  m,
	}
	if cfg.LoginRateLimit > 0 {
		deps.Limiter = ratelimiter.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	}
	engine := router.NewRouter(deps, opts)

	go sweepSessions(ctx, authUC)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// sweepSessions purges expired sessions until ctx is done.
func sweepSessions(ctx context.Context, auth interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				slog.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged expired sessions", "count", n)
			}
		}
	}
}
