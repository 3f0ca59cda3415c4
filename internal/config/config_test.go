package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.amazon.com", cfg.Scraper.BaseURL)
	assert.Equal(t, "87868584-20", cfg.Scraper.AffiliateTag)
	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.Equal(t, 10, cfg.Scraper.LinkCap)
	assert.Equal(t, 100, cfg.Images.BatchSize)
	assert.Equal(t, 5, cfg.Images.Concurrency)
	assert.Equal(t, 800, cfg.Images.MaxDim)
	assert.Equal(t, 85, cfg.Images.JPEGQuality)
	assert.Equal(t, "products", cfg.Storage.KeyPrefix)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SCRAPER_BASE_URL", "https://www.amazon.de")
	t.Setenv("SCRAPER_LINK_CAP", "25")
	t.Setenv("SCRAPER_RETRY_DELAY", "500ms")
	t.Setenv("SCRAPER_USER_AGENTS", "agent-a,agent-b")
	t.Setenv("EVENTS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.amazon.de", cfg.Scraper.BaseURL)
	assert.Equal(t, 25, cfg.Scraper.LinkCap)
	assert.Equal(t, 500*time.Millisecond, cfg.Scraper.RetryDelay)
	assert.Equal(t, []string{"agent-a", "agent-b"}, cfg.Scraper.UserAgents)
	assert.True(t, cfg.Events.Enabled)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SCRAPER_MAX_RETRIES", "many")
	t.Setenv("IMAGES_BATCH_DELAY", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Images.BatchDelay)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:    "retries below one",
			mutate:  func(c *Config) { c.Scraper.MaxRetries = 0 },
			wantErr: "SCRAPER_MAX_RETRIES",
		},
		{
			name: "inverted courtesy delay window",
			mutate: func(c *Config) {
				c.Scraper.CourtesyDelayMin = 10 * time.Second
				c.Scraper.CourtesyDelayMax = 2 * time.Second
			},
			wantErr: "SCRAPER_COURTESY_DELAY_MIN",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Images.Concurrency = 0 },
			wantErr: "IMAGES_CONCURRENCY",
		},
		{
			name:    "quality out of range",
			mutate:  func(c *Config) { c.Images.JPEGQuality = 101 },
			wantErr: "IMAGES_JPEG_QUALITY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateStorageRequiresBucket(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Error(t, cfg.ValidateStorage())

	cfg.Storage.Bucket = "media-bucket"
	assert.NoError(t, cfg.ValidateStorage())
}
