package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Configuration struct {
	Server    ServerConfig    `json:"server"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Logging   LoggingConfig   `json:"logging"`
	Database  DatabaseConfig  `json:"database"`
}

type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

type AuthConfig struct {
	JWTSecret         string        `json:"jwt_secret"`
	TokenTTL          time.Duration `json:"token_ttl"`
	PasswordMinLength int           `json:"password_min_length"`
	PasswordMaxLength int           `json:"password_max_length"`
}

type RateLimitConfig struct {
	ThrottleThreshold int           `json:"throttle_threshold"`
	BlockThreshold    int           `json:"block_threshold"`
	Window            time.Duration `json:"window"`
	BlockDuration     time.Duration `json:"block_duration"`
	RedisAddr         string        `json:"redis_addr"` // empty selects the in-memory store
}

type LoggingConfig struct {
	Level       string `json:"level"`
	Environment string `json:"environment"`
}

type DatabaseConfig struct {
	Host            string `json:"host"`
	Port            string `json:"port"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	Name            string `json:"name"`
	SSLMode         string `json:"ssl_mode"`
	MaxIdleConns    int    `json:"max_idle_conns"`
	MaxOpenConns    int    `json:"max_open_conns"`
	ConnMaxLifetime int    `json:"conn_max_lifetime"`
}

var (
	config     *Configuration
	configOnce sync.Once
	configLock sync.RWMutex
)

func LoadConfig(filePath string) (*Configuration, error) {
	var err error

	configOnce.Do(func() {
		var file *os.File
		file, err = os.Open(filePath)
		if err != nil {
			err = fmt.Errorf("failed to open config file: %w", err)
			return
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		config = &Configuration{}
		err = decoder.Decode(config)
		if err != nil {
			err = fmt.Errorf("failed to decode config file: %w", err)
			return
		}

		applyDefaults(config)
		applyEnvironment(config)
	})

	return config, err
}

func GetConfig() *Configuration {
	configLock.RLock()
	defer configLock.RUnlock()
	return config
}

func InitializeDefaultConfig() *Configuration {
	configLock.Lock()
	defer configLock.Unlock()

	config = &Configuration{}
	applyDefaults(config)
	applyEnvironment(config)

	return config
}

func applyDefaults(cfg *Configuration) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "docregistry-dev-secret"
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = time.Hour
	}
	if cfg.Auth.PasswordMinLength == 0 {
		cfg.Auth.PasswordMinLength = 8
	}
	if cfg.Auth.PasswordMaxLength == 0 {
		cfg.Auth.PasswordMaxLength = 64
	}

	if cfg.RateLimit.ThrottleThreshold == 0 {
		cfg.RateLimit.ThrottleThreshold = 5
	}
	if cfg.RateLimit.BlockThreshold == 0 {
		cfg.RateLimit.BlockThreshold = 10
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Hour
	}
	if cfg.RateLimit.BlockDuration == 0 {
		cfg.RateLimit.BlockDuration = time.Hour
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Environment == "" {
		cfg.Logging.Environment = "development"
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}
	if cfg.Database.Username == "" {
		cfg.Database.Username = "postgres"
	}
	if cfg.Database.Password == "" {
		cfg.Database.Password = "password"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "docregistry"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 100
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}
}

func applyEnvironment(cfg *Configuration) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RateLimit.RedisAddr = v
	}
	if v := os.Getenv("DATABASE_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
}

func LogConfig(logger *zap.Logger) {
	configLock.RLock()
	defer configLock.RUnlock()

	logger.Info("Application configuration",
		zap.String("port", config.Server.Port),
		zap.Duration("read_timeout", config.Server.ReadTimeout),
		zap.Duration("write_timeout", config.Server.WriteTimeout),
		zap.Duration("token_ttl", config.Auth.TokenTTL),
		zap.Int("throttle_threshold", config.RateLimit.ThrottleThreshold),
		zap.Int("block_threshold", config.RateLimit.BlockThreshold),
		zap.Duration("attempt_window", config.RateLimit.Window),
		zap.Bool("redis_store", config.RateLimit.RedisAddr != ""),
		zap.String("database_host", config.Database.Host),
		zap.String("database_name", config.Database.Name),
	)
}
