package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	HTTPPort      string
	GRPCPort      string
	MySQLDSN      string
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	KafkaBrokers  []string
	KafkaTopic    string
	CORSOrigins   []string
	WorkerCount   int
	QueueSize     int
}

type ClientConfig struct {
	APIURL         string
	GRPCAddr       string
	SessionFile    string
	RedisAddr      string
	Profile        string
	PageSize       int
	ClearOnFailure bool
}

// LoadEnvFile loads a .env file into the environment, keeping variables
// that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func LoadServerConfig() (*ServerConfig, error) {
	ttl, err := getEnvDuration("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("WORKER_COUNT", 4)
	if err != nil {
		return nil, err
	}
	queueSize, err := getEnvInt("QUEUE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		HTTPPort:      getEnv("HTTP_PORT", "8000"),
		GRPCPort:      getEnv("GRPC_PORT", "50051"),
		MySQLDSN:      os.Getenv("MYSQL_DSN"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      ttl,
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "sweet-events"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		WorkerCount:   workers,
		QueueSize:     queueSize,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServerConfig) Validate() error {
	if c.HTTPPort == "" && c.GRPCPort == "" {
		return fmt.Errorf("HTTP_PORT or GRPC_PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	return nil
}

func LoadClientConfig() (*ClientConfig, error) {
	pageSize, err := getEnvInt("SWEETSHOP_PAGE_SIZE", 6)
	if err != nil {
		return nil, err
	}
	clearOnFailure, err := strconv.ParseBool(getEnv("SWEETSHOP_CLEAR_ON_FAILURE", "false"))
	if err != nil {
		return nil, fmt.Errorf("SWEETSHOP_CLEAR_ON_FAILURE: %w", err)
	}

	cfg := &ClientConfig{
		APIURL:         getEnv("SWEETSHOP_API", "http://127.0.0.1:8000"),
		GRPCAddr:       os.Getenv("SWEETSHOP_GRPC"),
		SessionFile:    getEnv("SWEETSHOP_SESSION_FILE", defaultSessionFile()),
		RedisAddr:      os.Getenv("SWEETSHOP_REDIS_ADDR"),
		Profile:        getEnv("SWEETSHOP_PROFILE", "default"),
		PageSize:       pageSize,
		ClearOnFailure: clearOnFailure,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ClientConfig) Validate() error {
	if c.APIURL == "" && c.GRPCAddr == "" {
		return fmt.Errorf("SWEETSHOP_API or SWEETSHOP_GRPC is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("SWEETSHOP_PAGE_SIZE must be at least 1")
	}
	if c.RedisAddr == "" && c.SessionFile == "" {
		return fmt.Errorf("SWEETSHOP_SESSION_FILE is required when no Redis address is set")
	}
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".sweetshop-session.yaml"
	}
	return filepath.Join(dir, "sweetshop", "session.yaml")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
