package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretLength = 32

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	JWTSecret        []byte
	DatabaseURL      string
	StoreDriver      string
	RedisAddress     string
	RedisPassword    string
	Port             string
	BcryptCost       int
	AllowedOrigins   []string
	TemplateCacheTTL time.Duration
}

// Load reads the process configuration from the environment, after merging a
// local .env file when one exists. Missing required values panic.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, relying on environment variables")
	}

	secret := os.Getenv("JWT_SECRET")
	if len(secret) < minSecretLength {
		panic("JWT_SECRET environment variable is required and must be at least 32 bytes")
	}

	driver := strings.ToLower(os.Getenv("STORE_DRIVER"))
	if driver == "" {
		driver = StorePostgres
	}
	if driver != StorePostgres && driver != StoreMemory {
		panic("STORE_DRIVER must be either postgres or memory")
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" && driver == StorePostgres {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		JWTSecret:        []byte(secret),
		DatabaseURL:      dbURL,
		StoreDriver:      driver,
		RedisAddress:     os.Getenv("REDIS_ADDRESS"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		Port:             port,
		BcryptCost:       intEnv("BCRYPT_COST", 10),
		AllowedOrigins:   listEnv("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		TemplateCacheTTL: durationEnv("TEMPLATE_CACHE_TTL", 10*time.Minute),
	}
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		panic(key + " must be an integer: " + err.Error())
	}
	return v
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		panic(key + " must be a duration: " + err.Error())
	}
	return v
}

func listEnv(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
