package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains the asset reaper.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	objects, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("configure object storage: %w", err)
	}

	reaper := media.NewReaper(objects, media.ReaperConfig{
		QueueSize: cfg.Media.ReaperQueue,
		Workers:   cfg.Media.ReaperWorkers,
	}, logger)
	library := media.NewLibrary(objects, media.NewFFProbe(cfg.Media.FFProbePath, cfg.Media.FFProbeTimeout), reaper)

	users := repositories.NewPostgresUserRepository(pool)
	sessions, err := auth.NewManager(cfg.Tokens, users)
	if err != nil {
		_ = reaper.Shutdown(ctx)
		return handlers.Dependencies{}, nil, fmt.Errorf("configure token manager: %w", err)
	}

	deps := handlers.Dependencies{
		Users:         users,
		Sessions:      sessions,
		Tokens:        sessions,
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Stats:         repositories.NewPostgresDashboardRepository(pool),
		Media:         library,
		Ping:          pingFunc(pool),

		AuthLimiter:    middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst, 10*time.Minute),
		CORSOrigins:    cfg.CORSOrigins,
		CookieSecure:   cfg.Tokens.CookieSecure,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	}

	return deps, reaper.Shutdown, nil
}

func pingFunc(pool db.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return err
		}
		defer conn.Release()
		return conn.Ping(ctx)
	}
}
