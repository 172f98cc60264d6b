package main

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/config"
)

type Environment struct {
	Environment    string `env:"APP_ENV" default:"development"`
	ServerAddress  string `env:"SERVER_ADDRESS" default:":8080"`
	SecretKey      string `env:"JWT_SECRET" required:"true"`
	DatabaseURL    string `env:"DATABASE_URL" required:"true"`
	MigrationsPath string `env:"MIGRATIONS_PATH" default:"./migrations"`
	OperatorEmails string `env:"OPERATOR_EMAILS"`

	// playlist cache; disabled when RedisAddress is empty
	RedisAddress     string        `env:"REDIS_ADDRESS"`
	RedisUsername    string        `env:"REDIS_USERNAME"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	PlaylistCacheTTL time.Duration `env:"PLAYLIST_CACHE_TTL" default:"5s"`

	MQTTBrokerURL string `env:"MQTT_BROKER_URL"`
	AMQPURL       string `env:"AMQP_URL"`

	UploadDir       string `env:"UPLOAD_DIR" default:"./uploads"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
	UseSpaces       bool   `env:"USE_SPACES"`
	SpacesEndpoint  string `env:"SPACES_ENDPOINT"`
	SpacesRegion    string `env:"SPACES_REGION"`
	SpacesBucket    string `env:"SPACES_BUCKET"`
	SpacesCDNURL    string `env:"SPACES_CDN_URL"`
	SpacesAccessKey string `env:"SPACES_ACCESS_KEY"`
	SpacesSecretKey string `env:"SPACES_SECRET_KEY"`
}

// players poll every 10s; a longer cache would stretch staleness past that
const maxPlaylistCacheTTL = 10 * time.Second

// LoadEnvironment reads and validates env vars
func LoadEnvironment() Environment {
	var env Environment
	if err := config.Load(&env); err != nil {
		log.Fatal().Err(err).Msg("Missing required environment variables")
	}
	if env.PlaylistCacheTTL > maxPlaylistCacheTTL {
		log.Warn().Dur("ttl", env.PlaylistCacheTTL).Msg("playlist cache TTL capped at the poll interval")
		env.PlaylistCacheTTL = maxPlaylistCacheTTL
	}
	return env
}
