package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Env     string
	Storage string
	// MemorySnapshot - JSON со стартовыми данными для STORAGE=memory
	MemorySnapshot string
	Database       DatabaseConfig
	Redis          RedisConfig
	HTTP           HTTPConfig
	Submit         SubmitConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - индекс топиков; пустой Addr отключает индекс
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type HTTPConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

type SubmitConfig struct {
	WholeTopic  bool
	MaxParallel int
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:     getEnv("APP_ENV", "dev"),
		Storage: getEnv("STORAGE", StoragePostgres),

		MemorySnapshot: getEnv("MEMORY_SNAPSHOT", ""),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "review"),
			Password: getEnv("DB_PASSWORD", "review"),
			DBName:   getEnv("DB_NAME", "review_submit"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", ""),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "review"),
		},
		HTTP: HTTPConfig{
			Addr:              getEnv("HTTP_ADDR", ":8080"),
			ReadHeaderTimeout: getEnvDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ShutdownTimeout:   getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Submit: SubmitConfig{
			WholeTopic:  getEnvBool("SUBMIT_WHOLE_TOPIC", true),
			MaxParallel: getEnvInt("SUBMIT_MAX_PARALLEL", 8),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
