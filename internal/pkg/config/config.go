package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// CryptoKey is the process-wide secret protecting the per-user remote
	// platform passwords at rest. Read-only after process start.
	CryptoKey string `env:"CRYPTO_KEY"`

	Mongo        MongoConfig
	Redis        RedisConfig
	ConnectyCube ConnectyCubeConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=chat_backend"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// ConnectyCubeConfig carries the application-level credentials for the
// remote messaging platform.
type ConnectyCubeConfig struct {
	Endpoint   string        `env:"CCUBE_ENDPOINT,    default=https://api.connectycube.com"`
	AppID      string        `env:"CCUBE_APP_ID"`
	AuthKey    string        `env:"CCUBE_AUTH_KEY"`
	AuthSecret string        `env:"CCUBE_AUTH_SECRET"`
	Timeout    time.Duration `env:"CCUBE_TIMEOUT,     default=10s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
