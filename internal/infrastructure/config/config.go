package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret          string `env:"JWT_SECRET"`
	JWTExpirationS     int    `env:"JWT_EXPIRATION_S,           default=900"`
	RefreshExpirationS int    `env:"REFRESH_TOKEN_EXPIRATION_S, default=604800"`

	Otp          OtpConfig
	TempPassword TempPasswordConfig

	// AdminBootstrapEmail, when set, provisions a super admin with a
	// temporary password on startup if the account does not exist yet.
	AdminBootstrapEmail string `env:"ADMIN_BOOTSTRAP_EMAIL"`

	Mongo MongoConfig
	Redis RedisConfig
}

type OtpConfig struct {
	LoginTTLMin       int `env:"OTP_LOGIN_TTL_MIN,        default=5"`
	ResetTTLMin       int `env:"OTP_RESET_TTL_MIN,        default=15"`
	EmailChangeTTLMin int `env:"OTP_EMAIL_CHANGE_TTL_MIN, default=15"`
}

type TempPasswordConfig struct {
	TTLHours int `env:"TEMP_PASSWORD_TTL_HOURS, default=24"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_service"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationS) * time.Second
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshExpirationS) * time.Second
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	return &cfg
}
