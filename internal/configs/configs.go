package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

type Config struct {
	AppURL                 string
	StoreDriver            string
	MongoURI               string
	MongoDBName            string
	DatabaseDSN            string
	RateLimit              int
	RedisEnabled           bool
	RedisAddr              string
	RedisRateLimitPrefix   string
	JaegerEndpoint         string
	LogLevel               string
	LogFormat              string
	LogFile                string
	ShutdownTimeoutSeconds int
}

func Load() (Config, error) {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	rateLimit, err := getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return Config{}, err
	}
	shutdownTimeout, err := getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20)
	if err != nil {
		return Config{}, err
	}
	redisEnabled, err := getEnvAsBool("REDIS_ENABLED", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		StoreDriver:            strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:               getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDBName:            getEnv("MONGO_DB_NAME", "task_manager"),
		DatabaseDSN:            getEnv("DATABASE_DSN", "tasks.db"),
		RateLimit:              rateLimit,
		RedisEnabled:           redisEnabled,
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisRateLimitPrefix:   getEnv("REDIS_RATE_LIMIT_PREFIX", "task_manager:rate:"),
		JaegerEndpoint:         os.Getenv("JAEGER_ENDPOINT"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "text"),
		LogFile:                os.Getenv("LOG_FILE"),
		ShutdownTimeoutSeconds: shutdownTimeout,
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.StoreDriver {
	case StoreMongo:
		if cfg.MongoURI == "" {
			return errors.New("MONGO_URI must not be empty")
		}
		if cfg.MongoDBName == "" {
			return errors.New("MONGO_DB_NAME must not be empty")
		}
	case StoreSQLite:
		if cfg.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN must not be empty")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreSQLite, cfg.StoreDriver)
	}
	if cfg.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s", key)
		}
		return i, nil
	}
	return defaultVal, nil
}

func getEnvAsBool(key string, defaultVal bool) (bool, error) {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("invalid boolean value for %s", key)
		}
		return b, nil
	}
	return defaultVal, nil
}
