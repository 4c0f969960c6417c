package config

import (
	"os"
	"strconv"
	"time"
)

// BinlogConfig holds connection settings for the MySQL replication stream.
type BinlogConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	ServerID uint32
	Database string
	Table    string
}

// LoginLimitConfig configures the failed-login lockout window.
type LoginLimitConfig struct {
	Enabled     bool
	MaxFailures int
	Window      time.Duration
}

// FaceRecConfig configures the outbound face-recognition enrollment call.
type FaceRecConfig struct {
	Enabled  bool
	URL      string
	Timeout  time.Duration
	Workers  int
	QueueLen int
}

// Config holds all configuration for the API server
type Config struct {
	APIPort     int
	DatabaseDSN string
	RedisURL    string
	NATSURL     string

	JWTSecret     string
	TokenTTL      time.Duration
	TokenCacheTTL time.Duration

	UploadDir string

	// Office thresholds used for attendance status derivation, "HH:MM".
	OfficeStart string
	OfficeEnd   string

	// Bootstrap passwords for the two built-in accounts.
	AdminPassword string
	HRPassword    string

	LoginLimit LoginLimitConfig
	FaceRec    FaceRecConfig
	Binlog     BinlogConfig
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		APIPort:     getEnvAsInt("API_PORT", 3000),
		DatabaseDSN: getEnv("DATABASE_DSN", "attend:attend_secret@tcp(localhost:3306)/attendtrack?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),

		JWTSecret:     getEnv("JWT_SECRET", "attendtrack-secret-key-change-in-production"),
		TokenTTL:      time.Duration(getEnvAsInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		TokenCacheTTL: time.Duration(getEnvAsInt("TOKEN_CACHE_TTL_MINUTES", 15)) * time.Minute,

		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),

		OfficeStart: getEnv("OFFICE_START", "10:00"),
		OfficeEnd:   getEnv("OFFICE_END", "18:00"),

		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		HRPassword:    getEnv("HR_PASSWORD", "hr"),

		LoginLimit: LoginLimitConfig{
			Enabled:     getEnvAsBool("LOGIN_LIMIT_ENABLED", true),
			MaxFailures: getEnvAsInt("LOGIN_LIMIT_MAX_FAILURES", 5),
			Window:      time.Duration(getEnvAsInt("LOGIN_LIMIT_WINDOW_MINUTES", 15)) * time.Minute,
		},
		FaceRec: FaceRecConfig{
			Enabled:  getEnvAsBool("FACEREC_ENABLED", true),
			URL:      getEnv("FACEREC_URL", "http://localhost:8500/enroll"),
			Timeout:  time.Duration(getEnvAsInt("FACEREC_TIMEOUT_SECONDS", 30)) * time.Second,
			Workers:  getEnvAsInt("FACEREC_WORKERS", 3),
			QueueLen: getEnvAsInt("FACEREC_QUEUE_LEN", 100),
		},
		Binlog: BinlogConfig{
			Enabled:  getEnvAsBool("BINLOG_ENABLED", true),
			Host:     getEnv("BINLOG_HOST", "localhost"),
			Port:     getEnvAsInt("BINLOG_PORT", 3306),
			User:     getEnv("BINLOG_USER", "repl"),
			Password: getEnv("BINLOG_PASSWORD", "repl_secret"),
			ServerID: uint32(getEnvAsInt("BINLOG_SERVER_ID", 1001)),
			Database: getEnv("BINLOG_DATABASE", "attendtrack"),
			Table:    getEnv("BINLOG_TABLE", "location_samples"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
