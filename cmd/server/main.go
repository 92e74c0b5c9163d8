package main

import (
	"context"
	"net/http"

	firebase "firebase.google.com/go/v4"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/quickdate/admin-api/internal/config"
	"github.com/quickdate/admin-api/internal/handlers"
	appMiddleware "github.com/quickdate/admin-api/internal/middleware"
	"github.com/quickdate/admin-api/internal/services"
	"github.com/quickdate/admin-api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger := newLogger(cfg)
	defer logger.Sync()
	log := logger.Sugar()

	var opts []option.ClientOption
	if cfg.FirebaseCredentials != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseCredentials)))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		log.Fatalw("firebase init failed", "err", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		log.Fatalw("firestore client failed", "err", err)
	}
	defer fsClient.Close()
	st := store.NewFirestore(fsClient)

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatalw("firebase auth client failed", "err", err)
	}
	names := services.NewFirebaseNames(authClient)

	admins, err := services.NewMongoAdminService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalw("mongo connect failed", "err", err)
	}
	defer admins.Close(ctx)

	sessions := services.NewSessionService(cfg.JWTSecret, cfg.SessionMaxAge)

	var photos *services.PhotoService
	if cfg.StorageBucket != "" {
		photos, err = services.NewPhotoService(ctx, cfg.StorageBucket, cfg.SafeSearchGate, log)
		if err != nil {
			log.Warnw("photo service init failed, uploads disabled", "err", err)
		}
	}

	trustSafety := services.NewTrustSafetyService(st, names, log, cfg.UseCollectionGroup)
	moderation := services.NewModerationService(st, log)
	autoFlag := services.NewAutoFlagService(st, log)
	users := services.NewUserService(st, log)
	profiles := services.NewAIProfileService(st, log)
	analytics := services.NewAnalyticsService(st, log)

	trustSafetyHandler := handlers.NewTrustSafetyHandler(trustSafety, moderation, autoFlag)
	userHandler := handlers.NewUserHandler(users)
	profileHandler := handlers.NewAIProfileHandler(profiles)
	analyticsHandler := handlers.NewAnalyticsHandler(analytics)
	authHandler := handlers.NewAuthHandler(admins, sessions, cfg.IsProduction())
	uploadHandler := handlers.NewUploadHandler(photos, cfg.MaxUploadSizeMB)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/session", authHandler.Login)
		r.Post("/admin-users/seed", authHandler.Seed)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.AdminAuth(sessions, adminChecker{admins}))

			r.Get("/auth/session", authHandler.Session)
			r.Delete("/auth/session", authHandler.Logout)

			r.Route("/trust-safety", func(r chi.Router) {
				r.Get("/live-feed", trustSafetyHandler.LiveFeed)
				r.Post("/moderate", trustSafetyHandler.Moderate)
				r.Post("/auto-flag", trustSafetyHandler.AutoFlag)
				r.Get("/reports", trustSafetyHandler.Reports)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", userHandler.Get)
					r.Patch("/", userHandler.Patch)
					r.Delete("/", userHandler.Delete)
				})
			})

			r.Route("/ai-profiles", func(r chi.Router) {
				r.Get("/", profileHandler.List)
				r.Post("/", profileHandler.Generate)
				r.Post("/actions/pause-all", profileHandler.PauseAll)
				r.Post("/actions/clean-expired", profileHandler.CleanExpired)
				r.Post("/actions/regenerate-expired", profileHandler.RegenerateExpired)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", profileHandler.Get)
					r.Patch("/", profileHandler.Patch)
					r.Delete("/", profileHandler.Delete)
					r.Post("/play", profileHandler.Play)
					r.Post("/pause", profileHandler.Pause)
				})
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/stats", analyticsHandler.Stats)
				r.Get("/revenue-series", analyticsHandler.RevenueSeries)
				r.Get("/subscriptions-series", analyticsHandler.SubscriptionsSeries)
				r.Get("/region-insights", analyticsHandler.RegionInsights)
				r.Get("/engagement-heatmap", analyticsHandler.EngagementHeatmap)
				r.Get("/date-reports", analyticsHandler.DateReports)
				r.Get("/ongoing-dates", analyticsHandler.OngoingDates)
			})

			r.Post("/uploads/user-photo", uploadHandler.UserPhoto)
		})
	})

	log.Infow("admin api starting", "addr", cfg.ServerAddress, "env", cfg.Env)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalw("server failed", "err", err)
	}
}

// adminChecker adapts MongoAdminService to the middleware's AccountChecker.
type adminChecker struct {
	admins *services.MongoAdminService
}

func (c adminChecker) Check(ctx context.Context, email string) error {
	_, err := c.admins.Lookup(ctx, email)
	return err
}

func newLogger(cfg *config.Config) *zap.Logger {
	if cfg.IsProduction() {
		logger, _ := zap.NewProduction()
		return logger
	}
	logger, _ := zap.NewDevelopment()
	return logger
}
