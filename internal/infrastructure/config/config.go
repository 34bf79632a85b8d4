package config

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env              string `env:"ENV,              default=development"`
	LogLevel         string `env:"LOG_LEVEL,        default=info"`
	ListenAddr       string `env:"LISTEN_ADDR,      default=:8080"`
	UnauthorizedPath string `env:"UNAUTHORIZED_PATH, default=/unauthorized"`

	Backend BackendConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

// BackendConfig locates the REST backend that owns user records.
type BackendConfig struct {
	BaseURL string        `env:"BACKEND_BASE_URL, default=http://localhost:9000"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT,  default=10s"`
}

// RedisConfig configures the persisted session/avatar/audit store.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// MongoConfig configures the optional MongoDB audit trail backend.
type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=admin_dashboard"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(log zerolog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		panic(err)
	}
	return &cfg
}
