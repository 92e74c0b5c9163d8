package main

import (
	"context"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/quickdate/admin-api/internal/config"
	"github.com/quickdate/admin-api/internal/services"
	"github.com/quickdate/admin-api/internal/store"
)

// The sweeper runs the AI-profile lifecycle on a schedule: expired profiles
// get deleted unless they auto-regenerate, in which case they come back
// Active with a fresh expiry. A tiny HTTP listener answers health probes.
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

	profiles := services.NewAIProfileService(store.NewFirestore(fsClient), log)

	sweep := func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		regenerated, err := profiles.RegenerateExpired(sweepCtx)
		if err != nil {
			log.Errorw("regenerate sweep failed", "err", err)
		}
		deleted, err := profiles.CleanExpired(sweepCtx)
		if err != nil {
			log.Errorw("clean sweep failed", "err", err)
		}
		log.Infow("sweep complete", "regenerated", regenerated, "deleted", deleted)
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.SweepSchedule, sweep); err != nil {
		log.Fatalw("invalid sweep schedule", "schedule", cfg.SweepSchedule, "err", err)
	}
	c.Start()
	defer c.Stop()

	// Run once at startup so a fresh deploy doesn't wait a full interval.
	sweep()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	log.Infow("profile-sweeper listening", "addr", cfg.ServerAddress, "schedule", cfg.SweepSchedule)
	if err := http.ListenAndServe(cfg.ServerAddress, nil); err != nil {
		log.Fatalw("sweeper server failed", "err", err)
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	if cfg.IsProduction() {
		logger, _ := zap.NewProduction()
		return logger
	}
	logger, _ := zap.NewDevelopment()
	return logger
}
