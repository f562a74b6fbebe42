package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server  Server
	AWS     AWS
	Feed    Feed
	Cache   Cache
	Logging Logging
}

type Server struct {
	Port           string   `envconfig:"PORT" default:"8080"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

type AWS struct {
	Region         string        `envconfig:"AWS_REGION" required:"true"`
	DynamoEndpoint string        `envconfig:"DYNAMODB_ENDPOINT"`
	UsersTable     string        `envconfig:"USERS_TABLE" default:"Users"`
	MatchesTable   string        `envconfig:"MATCHES_TABLE" default:"Matches"`
	Bucket         string        `envconfig:"S3_BUCKET_NAME" required:"true"`
	AvatarURLTTL   time.Duration `envconfig:"AVATAR_URL_TTL" default:"1h"`
}

type Feed struct {
	PollInterval time.Duration `envconfig:"FEED_POLL_INTERVAL" default:"5s"`
	HideFull     bool          `envconfig:"FEED_HIDE_FULL" default:"false"`
}

// Cache configures the player profile cache. An empty URL keeps the cache
// in process memory; a redis:// URL shares it between instances.
type Cache struct {
	URL        string        `envconfig:"CACHE_URL"`
	TTL        time.Duration `envconfig:"PROFILE_CACHE_TTL" default:"0s"`
	MaxEntries int           `envconfig:"PROFILE_CACHE_MAX_ENTRIES" default:"1000"`
}

type Logging struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	ElasticURL  string `envconfig:"ELASTIC_URL"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"courtmates"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
