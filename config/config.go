package config

import (
	"os"
	"strconv"
)

// 儲存後端種類
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// 佇列後端種類
const (
	QueueMemory = "memory"
	QueueRedis  = "redis"
)

type Config struct {
	Server   ServerConfig
	Pool     PoolConfig
	Auth     AuthConfig
	Store    StoreConfig
	Queue    QueueConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port string
}

// PoolConfig 票池參數，部署後固定不變
type PoolConfig struct {
	Size      int
	UnitPrice float64
}

type AuthConfig struct {
	PurchasePassword string
	AdminToken       string
}

type StoreConfig struct {
	Backend string
}

type QueueConfig struct {
	Backend string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Pool: PoolConfig{
			Size:      getEnvInt("POOL_SIZE", 100),
			UnitPrice: getEnvFloat("TICKET_PRICE", 20),
		},
		Auth: AuthConfig{
			PurchasePassword: getEnv("PURCHASE_PASSWORD", "secret"),
			AdminToken:       getEnv("ADMIN_TOKEN", "admin-token"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", StoreMemory),
		},
		Queue: QueueConfig{
			Backend: getEnv("QUEUE_BACKEND", QueueMemory),
		},
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server: ServerConfig{Port: "8080"},
		Pool: PoolConfig{
			Size:      10,
			UnitPrice: 20,
		},
		Auth: AuthConfig{
			PurchasePassword: "test-password",
			AdminToken:       "test-admin-token",
		},
		Store:    StoreConfig{Backend: StoreMemory},
		Queue:    QueueConfig{Backend: QueueMemory},
		Database: *testConfig,
		Redis:    testRedisConfig,
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		panic(err)
	}
	return f
}
