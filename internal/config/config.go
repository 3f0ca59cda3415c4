package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Scraper Scraper
	Images  Images
	Store   Store
	Storage Storage
	Events  Events
	Logging Logging
}

type Scraper struct {
	BaseURL        string
	AffiliateTag   string
	MaxRetries     int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
	// Courtesy delay applied before every fetch, jittered between min and max.
	CourtesyDelayMin time.Duration
	CourtesyDelayMax time.Duration
	// Pause between successive detail-page fetches within one source.
	LinkDelayMin time.Duration
	LinkDelayMax time.Duration
	// Pause between sources.
	SourceDelayMin time.Duration
	SourceDelayMax time.Duration
	LinkCap        int
	UserAgents     []string
	LinksFile      string
}

type Images struct {
	BatchSize   int
	Concurrency int
	MaxRetries  int
	RetryDelay  time.Duration
	MaxDim      int
	JPEGQuality int
	BatchDelay  time.Duration
	ResultsLog  string
}

type Store struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	MaxConnLife time.Duration
	MaxConnIdle time.Duration
}

type Storage struct {
	Bucket    string
	KeyPrefix string
}

type Events struct {
	Enabled bool
	Addr    string
	Stream  string
}

type Logging struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Scraper: Scraper{
			BaseURL:          getEnvOrDefault("SCRAPER_BASE_URL", "https://www.amazon.com"),
			AffiliateTag:     getEnvOrDefault("SCRAPER_AFFILIATE_TAG", "87868584-20"),
			MaxRetries:       getIntOrDefault("SCRAPER_MAX_RETRIES", 3),
			RetryDelay:       getDurationOrDefault("SCRAPER_RETRY_DELAY", 2*time.Second),
			RequestTimeout:   getDurationOrDefault("SCRAPER_REQUEST_TIMEOUT", 10*time.Second),
			CourtesyDelayMin: getDurationOrDefault("SCRAPER_COURTESY_DELAY_MIN", 2*time.Second),
			CourtesyDelayMax: getDurationOrDefault("SCRAPER_COURTESY_DELAY_MAX", 5*time.Second),
			LinkDelayMin:     getDurationOrDefault("SCRAPER_LINK_DELAY_MIN", 3*time.Second),
			LinkDelayMax:     getDurationOrDefault("SCRAPER_LINK_DELAY_MAX", 5*time.Second),
			SourceDelayMin:   getDurationOrDefault("SCRAPER_SOURCE_DELAY_MIN", 10*time.Second),
			SourceDelayMax:   getDurationOrDefault("SCRAPER_SOURCE_DELAY_MAX", 15*time.Second),
			LinkCap:          getIntOrDefault("SCRAPER_LINK_CAP", 10),
			UserAgents:       getStringSliceOrDefault("SCRAPER_USER_AGENTS", nil),
			LinksFile:        getEnvOrDefault("SCRAPER_LINKS_FILE", ""),
		},
		Images: Images{
			BatchSize:   getIntOrDefault("IMAGES_BATCH_SIZE", 100),
			Concurrency: getIntOrDefault("IMAGES_CONCURRENCY", 5),
			MaxRetries:  getIntOrDefault("IMAGES_MAX_RETRIES", 3),
			RetryDelay:  getDurationOrDefault("IMAGES_RETRY_DELAY", 5*time.Second),
			MaxDim:      getIntOrDefault("IMAGES_MAX_DIM", 800),
			JPEGQuality: getIntOrDefault("IMAGES_JPEG_QUALITY", 85),
			BatchDelay:  getDurationOrDefault("IMAGES_BATCH_DELAY", 5*time.Second),
			ResultsLog:  getEnvOrDefault("IMAGES_RESULTS_LOG", "upload_results.jsonl"),
		},
		Store: Store{
			Host:        getEnvOrDefault("DB_HOST", "localhost"),
			Port:        getIntOrDefault("DB_PORT", 5432),
			User:        getEnvOrDefault("DB_USER", "postgres"),
			Password:    getEnvOrDefault("DB_PASSWORD", ""),
			Database:    getEnvOrDefault("DB_NAME", "deals_scraper"),
			SSLMode:     getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns:    int32(getIntOrDefault("DB_MAX_CONNS", 10)),
			MinConns:    int32(getIntOrDefault("DB_MIN_CONNS", 2)),
			MaxConnLife: getDurationOrDefault("DB_MAX_CONN_LIFE", time.Hour),
			MaxConnIdle: getDurationOrDefault("DB_MAX_CONN_IDLE", 30*time.Minute),
		},
		Storage: Storage{
			Bucket:    getEnvOrDefault("STORAGE_BUCKET", ""),
			KeyPrefix: getEnvOrDefault("STORAGE_KEY_PREFIX", "products"),
		},
		Events: Events{
			Enabled: getBoolOrDefault("EVENTS_ENABLED", false),
			Addr:    getEnvOrDefault("EVENTS_REDIS_ADDR", "localhost:6379"),
			Stream:  getEnvOrDefault("EVENTS_STREAM", "stream:product_sync"),
		},
		Logging: Logging{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.MaxRetries < 1 {
		return fmt.Errorf("SCRAPER_MAX_RETRIES must be at least 1")
	}
	if c.Scraper.CourtesyDelayMin > c.Scraper.CourtesyDelayMax {
		return fmt.Errorf("SCRAPER_COURTESY_DELAY_MIN cannot be greater than SCRAPER_COURTESY_DELAY_MAX")
	}
	if c.Scraper.LinkCap < 1 {
		return fmt.Errorf("SCRAPER_LINK_CAP must be at least 1")
	}
	if c.Images.Concurrency < 1 {
		return fmt.Errorf("IMAGES_CONCURRENCY must be at least 1")
	}
	if c.Images.BatchSize < 1 {
		return fmt.Errorf("IMAGES_BATCH_SIZE must be at least 1")
	}
	if c.Images.JPEGQuality < 1 || c.Images.JPEGQuality > 100 {
		return fmt.Errorf("IMAGES_JPEG_QUALITY must be between 1 and 100")
	}
	return nil
}

// ValidateStorage applies the checks only the image worker needs. Bucket
// credentials are the one piece of config that must be present before any
// upload can happen.
func (c *Config) ValidateStorage() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
