package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	GRPCPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogMode         string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	CookieSecure  bool

	CatalogDriver     string
	CatalogSeedFile   string
	SQLitePath        string
	MigrationsPath    string
	KafkaBrokers      []string
	HealthCheckPeriod time.Duration
}

const (
	CatalogMongo  = "mongo"
	CatalogSQLite = "sqlite"
)

// Load reads an optional .env file and then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		GRPCPort:        getEnv("GRPC_PORT", "50060"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogMode:         getEnv("LOG_MODE", "dev"),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDBName: getEnv("MONGO_DB_NAME", "storefront"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:  getBool("COOKIE_SECURE", false),

		CatalogDriver:     strings.ToLower(getEnv("CATALOG_DRIVER", CatalogMongo)),
		CatalogSeedFile:   getEnv("CATALOG_SEED_FILE", ""),
		SQLitePath:        getEnv("SQLITE_PATH", "./products.db"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		KafkaBrokers:      getList("KAFKA_BROKERS"),
		HealthCheckPeriod: getDuration("HEALTH_CHECK_PERIOD", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
