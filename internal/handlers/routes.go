package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidtube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Tokens        middleware.TokenVerifier
	Videos        VideoStore
	Comments      CommentStore
	Likes         LikeStore
	Tweets        TweetStore
	Playlists     PlaylistStore
	Subscriptions SubscriptionStore
	Stats         StatsStore
	Media         MediaStore
	Ping          func(ctx context.Context) error

	AuthLimiter    middleware.RateLimiter
	CORSOrigins    []string
	CookieSecure   bool
	MaxUploadBytes int64
	Logger         *slog.Logger
	NowFunc        func() time.Time
}

// NewRouter wires every endpoint under /api/v1 plus the Prometheus scrape endpoint.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	health := HealthHandler{Ping: deps.Ping}
	accounts := AuthHandler{
		Users:          deps.Users,
		Sessions:       deps.Sessions,
		Media:          deps.Media,
		CookieSecure:   deps.CookieSecure,
		MaxUploadBytes: deps.MaxUploadBytes,
		NowFunc:        deps.NowFunc,
	}
	users := UserHandler{
		Users:          deps.Users,
		Videos:         deps.Videos,
		Media:          deps.Media,
		MaxUploadBytes: deps.MaxUploadBytes,
		NowFunc:        deps.NowFunc,
	}
	videos := VideoHandler{Videos: deps.Videos, Media: deps.Media, MaxUploadBytes: deps.MaxUploadBytes, NowFunc: deps.NowFunc}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, NowFunc: deps.NowFunc}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Tweets: deps.Tweets}
	tweets := TweetHandler{Tweets: deps.Tweets, NowFunc: deps.NowFunc}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, NowFunc: deps.NowFunc}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users}
	dashboard := DashboardHandler{Stats: deps.Stats, Videos: deps.Videos}

	authenticate := middleware.Authenticate(deps.Tokens, deps.Users)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Metrics)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", health.Handle)

		r.Route("/users", func(r chi.Router) {
			r.With(middleware.RateLimit(deps.AuthLimiter, "register")).Post("/register", accounts.Register)
			r.With(middleware.RateLimit(deps.AuthLimiter, "login")).Post("/login", accounts.Login)
			r.Post("/refresh-token", accounts.RefreshToken)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/logout", accounts.Logout)
				r.Post("/change-password", accounts.ChangePassword)
				r.Get("/current-user", users.CurrentUser)
				r.Patch("/update-account", users.UpdateAccount)
				r.Patch("/avatar", users.UpdateAvatar)
				r.Patch("/cover-image", users.UpdateCoverImage)
				r.Get("/c/{username}", users.ChannelProfile)
				r.Get("/history", users.WatchHistory)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", videos.List)
				r.Post("/", videos.Publish)
				r.Get("/{videoId}", videos.Get)
				r.Patch("/{videoId}", videos.Update)
				r.Delete("/{videoId}", videos.Delete)
				r.Patch("/toggle/publish/{videoId}", videos.TogglePublish)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/{videoId}", comments.List)
				r.Post("/{videoId}", comments.Add)
				r.Patch("/c/{commentId}", comments.Update)
				r.Delete("/c/{commentId}", comments.Delete)
			})

			r.Route("/likes", func(r chi.Router) {
				r.Post("/toggle/v/{videoId}", likes.ToggleVideo)
				r.Post("/toggle/c/{commentId}", likes.ToggleComment)
				r.Post("/toggle/t/{tweetId}", likes.ToggleTweet)
				r.Get("/videos", likes.LikedVideos)
			})

			r.Route("/playlists", func(r chi.Router) {
				r.Post("/", playlists.Create)
				r.Get("/user/{userId}", playlists.ListByUser)
				r.Patch("/add/{videoId}/{playlistId}", playlists.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlists.RemoveVideo)
				r.Get("/{playlistId}", playlists.Get)
				r.Patch("/{playlistId}", playlists.Update)
				r.Delete("/{playlistId}", playlists.Delete)
			})

			r.Route("/tweets", func(r chi.Router) {
				r.Post("/", tweets.Create)
				r.Get("/user/{userId}", tweets.ListByUser)
				r.Patch("/{tweetId}", tweets.Update)
				r.Delete("/{tweetId}", tweets.Delete)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/c/{channelId}", subscriptions.Toggle)
				r.Get("/c/{channelId}", subscriptions.Subscribers)
				r.Get("/u/{subscriberId}", subscriptions.Channels)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", dashboard.ChannelStats)
				r.Get("/videos", dashboard.ChannelVideos)
			})
		})
	})

	return r
}

func nowFrom(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now().UTC()
}
