package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RESTconfig struct {
	PORT               string
	CorsAllowedOrigins []string
}

// ApiClientConfig - параметры клиента внешнего API объектов.
type ApiClientConfig struct {
	LISTINGS_URL      string
	Timeout           time.Duration
	ReadRetryMax      uint64
	ReadRetryInterval time.Duration
	UploadConcurrency int
}

type BoardConfig struct {
	FilterDebounce   time.Duration
	CacheTTL         time.Duration
	ReconcileTimeout time.Duration
}

type CacheConfig struct {
	Backend  string // memory | redis
	RedisURL string
}

type PostgresConfig struct {
	DatabaseURL string
	MaxConns    int32
	CacheMaxAge time.Duration
}

type RabbitMQConfig struct {
	Enabled bool
	URL     string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Rest         RESTconfig
	ApiClient    ApiClientConfig
	Board        BoardConfig
	Cache        CacheConfig
	Postgres     PostgresConfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из .env (если файл есть) и переменных окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		// В контейнере .env обычно нет, конфигурация приходит из окружения.
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "listing-organizer")

	cfg.Rest.PORT = getEnvAsString("PORT", "8080")
	cfg.Rest.CorsAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	cfg.ApiClient.LISTINGS_URL = strings.TrimRight(os.Getenv("LISTINGS_API_URL"), "/")
	if cfg.ApiClient.LISTINGS_URL == "" {
		return nil, fmt.Errorf("LISTINGS_API_URL environment variable is required")
	}
	cfg.ApiClient.Timeout = getEnvAsDuration("API_TIMEOUT", 15*time.Second)
	cfg.ApiClient.ReadRetryMax = uint64(getEnvAsInt("API_READ_RETRY_MAX", 3))
	cfg.ApiClient.ReadRetryInterval = getEnvAsDuration("API_READ_RETRY_INTERVAL", time.Second)
	cfg.ApiClient.UploadConcurrency = getEnvAsInt("UPLOAD_CONCURRENCY", 4)
	if cfg.ApiClient.UploadConcurrency <= 0 {
		cfg.ApiClient.UploadConcurrency = 1
	}

	cfg.Board.FilterDebounce = getEnvAsDuration("BOARD_FILTER_DEBOUNCE", 400*time.Millisecond)
	cfg.Board.CacheTTL = getEnvAsDuration("BOARD_CACHE_TTL", 10*time.Minute)
	cfg.Board.ReconcileTimeout = getEnvAsDuration("BOARD_RECONCILE_TIMEOUT", 30*time.Second)

	cfg.Cache.Backend = strings.ToLower(getEnvAsString("CACHE_BACKEND", "memory"))
	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		cfg.Cache.RedisURL = os.Getenv("REDIS_URL")
		if cfg.Cache.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL environment variable is required when CACHE_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q (expected memory or redis)", cfg.Cache.Backend)
	}

	// Пустой DATABASE_URL - кэш объектов живет в памяти процесса.
	cfg.Postgres.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Postgres.MaxConns = int32(getEnvAsInt("DATABASE_MAX_CONNS", 4))
	cfg.Postgres.CacheMaxAge = getEnvAsDuration("PROPERTY_CACHE_MAX_AGE", time.Hour)

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED=true")
		}
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию.
// Логирует предупреждение, если переменная есть, но не парсится.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists || valStr == "" {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration понимает формат time.ParseDuration ("400ms", "2s").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists || valStr == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil || d < 0 {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList читает список через запятую.
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
