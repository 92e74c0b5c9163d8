package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddress string
	Env           string

	FirebaseProjectID   string
	FirebaseCredentials string // raw service-account JSON; empty = ADC
	StorageBucket       string

	MongoURI string
	MongoDB  string

	JWTSecret     string
	SessionMaxAge time.Duration

	// Collection-group queries require a Firestore index, so they are opt-in.
	UseCollectionGroup bool

	MaxUploadSizeMB int64
	SafeSearchGate  bool

	SweepSchedule string
}

func Load() *Config {
	return &Config{
		ServerAddress:       getEnv("SERVER_ADDRESS", ":8080"),
		Env:                 getEnv("ENV", "development"),
		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		StorageBucket:       getEnv("FIREBASE_STORAGE_BUCKET", ""),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGO_DB", "quickdate_admin"),
		JWTSecret:           getEnv("JWT_SECRET", "change-me-in-production"),
		SessionMaxAge:       7 * 24 * time.Hour,
		UseCollectionGroup:  getEnvBool("TS_USE_COLLECTION_GROUP", false),
		MaxUploadSizeMB:     10,
		SafeSearchGate:      getEnvBool("SAFESEARCH_GATE", false),
		SweepSchedule:       getEnv("SWEEP_SCHEDULE", "@hourly"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
