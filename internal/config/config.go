package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string

	StorageDriver string
	AutoMigrate   bool

	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int

	JWTSecret  string
	JWTIssuer  string
	JWTTTL     time.Duration
	BcryptCost int
	AdminEmail string
	AdminPass  string
	AdminName  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		StorageDriver: getEnv("STORAGE_DRIVER", DriverPostgres),
		AutoMigrate:   getEnvAsBool("DB_AUTO_MIGRATE", true),

		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "app_user"),
		Password: getEnv("DB_PASSWORD", "postgres_password"),
		DBName:   getEnv("DB_NAME", "bookstore"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		JWTIssuer:  getEnv("JWT_ISSUER", "bookstore-service"),
		JWTTTL:     getEnvAsDuration("JWT_TTL", 24*time.Hour),
		BcryptCost: getEnvAsInt("BCRYPT_COST", 10),
		AdminEmail: getEnv("ADMIN_EMAIL", ""),
		AdminPass:  getEnv("ADMIN_PASSWORD", ""),
		AdminName:  getEnv("ADMIN_NAME", "Administrator"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

// ValidateAuth checks the settings the HTTP server needs to issue and
// verify tokens.
func (c *Config) ValidateAuth() error {
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if (c.AdminEmail == "") != (c.AdminPass == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// DSN builds a libpq keyword/value connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
