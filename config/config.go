package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	MongoURI    string
	NATSUrl     string
	ListenAddr  string
	SiteBaseURL string
	Environment string

	CheckpointPath string
	ItemDelay      time.Duration

	Mastodon  MastodonConfig
	Bluesky   BlueskyConfig
	Tumblr    TumblrConfig
	Pinterest PinterestConfig
	Devto     DevtoConfig
	Indexing  IndexingConfig
	Ping      PingConfig
}

type MastodonConfig struct {
	Server      string
	AccessToken string
}

type BlueskyConfig struct {
	Host       string
	Identifier string
	Password   string
}

type TumblrConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
	Blog           string
}

type PinterestConfig struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	BoardID      string
	MinInterval  time.Duration
}

type DevtoConfig struct {
	APIKey   string
	PageSize int
}

type IndexingConfig struct {
	Endpoint     string
	ServiceToken string
}

type PingConfig struct {
	Endpoint string
	Key      string
}

// Load reads configuration from environment variables. Platform credential
// blocks are optional: an empty block silently disables that platform's
// adapter rather than failing startup.
func Load() *Config {
	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		NATSUrl:     getEnv("NATS_URL", "nats://localhost:4222"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		SiteBaseURL: getEnv("SITE_BASE_URL", "https://wayfarerlog.com"),
		Environment: getEnv("ENVIRONMENT", "development"),

		CheckpointPath: getEnv("BACKFILL_CHECKPOINT_PATH", "backfill-checkpoint.json"),
		ItemDelay:      getDurationEnv("BACKFILL_ITEM_DELAY", "15s"),

		Mastodon: MastodonConfig{
			Server:      getEnv("MASTODON_SERVER", "https://mastodon.social"),
			AccessToken: getEnv("MASTODON_ACCESS_TOKEN", ""),
		},
		Bluesky: BlueskyConfig{
			Host:       getEnv("BLUESKY_HOST", "https://bsky.social"),
			Identifier: getEnv("BLUESKY_IDENTIFIER", ""),
			Password:   getEnv("BLUESKY_APP_PASSWORD", ""),
		},
		Tumblr: TumblrConfig{
			ConsumerKey:    getEnv("TUMBLR_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("TUMBLR_CONSUMER_SECRET", ""),
			Token:          getEnv("TUMBLR_TOKEN", ""),
			TokenSecret:    getEnv("TUMBLR_TOKEN_SECRET", ""),
			Blog:           getEnv("TUMBLR_BLOG", ""),
		},
		Pinterest: PinterestConfig{
			ClientID:     getEnv("PINTEREST_CLIENT_ID", ""),
			ClientSecret: getEnv("PINTEREST_CLIENT_SECRET", ""),
			AccessToken:  getEnv("PINTEREST_ACCESS_TOKEN", ""),
			RefreshToken: getEnv("PINTEREST_REFRESH_TOKEN", ""),
			BoardID:      getEnv("PINTEREST_BOARD_ID", ""),
			MinInterval:  getDurationEnv("PINTEREST_MIN_INTERVAL", "5m"),
		},
		Devto: DevtoConfig{
			APIKey:   getEnv("DEVTO_API_KEY", ""),
			PageSize: getIntEnv("DEVTO_HISTORY_PAGE_SIZE", 100),
		},
		Indexing: IndexingConfig{
			Endpoint:     getEnv("INDEXING_ENDPOINT", "https://indexing.googleapis.com/v3/urlNotifications:publish"),
			ServiceToken: getEnv("INDEXING_SERVICE_TOKEN", ""),
		},
		Ping: PingConfig{
			Endpoint: getEnv("INDEXNOW_ENDPOINT", "https://api.indexnow.org/indexnow"),
			Key:      getEnv("INDEXNOW_KEY", ""),
		},
	}

	log.Printf("Config loaded - Environment: %s, ItemDelay: %v, PinterestMinInterval: %v",
		cfg.Environment, cfg.ItemDelay, cfg.Pinterest.MinInterval)

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
