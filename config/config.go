package config

import (
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN    string `envconfig:"DB_DSN" default:"restaurant.db"`

	// JWTSecret signs staff access tokens; override it outside development
	JWTSecret string        `envconfig:"JWT_SECRET" default:"restaurant_super_secret_2024"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// AppDomain is the customer menu host used when settings carry no base URL
	AppDomain       string   `envconfig:"APP_DOMAIN" default:"localhost:8081"`
	CORSOrigins     []string `envconfig:"CORS_ORIGINS" default:"http://localhost:8081,http://localhost:19006,http://localhost:3000"`
	PublicRateLimit string   `envconfig:"PUBLIC_RATE_LIMIT" default:"30-M"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	AMQPURL string `envconfig:"AMQP_URL"`

	StrictTransitions bool `envconfig:"STRICT_TRANSITIONS" default:"false"`
}

// Load reads the optional .env files, then the environment
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "failed to read env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}
