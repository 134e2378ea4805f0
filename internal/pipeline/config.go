package pipeline

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/mhrabal/facrcrawl/internal/fetcher"
)

// Config captures every configuration knob that influences a crawl run.
// All values originate from Viper so the crawler can be configured via files,
// env vars, or CLI flags.
type Config struct {
	BaseURL        string
	UserAgent      string
	Concurrency    int
	RequestTimeout time.Duration
	MinDelay       time.Duration
	MaxAttempts    int
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		BaseURL:        v.GetString("crawler.base_url"),
		UserAgent:      v.GetString("crawler.user_agent"),
		Concurrency:    v.GetInt("crawler.concurrency"),
		RequestTimeout: v.GetDuration("crawler.request_timeout"),
		MinDelay:       v.GetDuration("crawler.min_delay"),
		MaxAttempts:    v.GetInt("crawler.max_attempts"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("crawler.base_url must be set")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("crawler.request_timeout must be > 0")
	}
	if c.MinDelay < 0 {
		return fmt.Errorf("crawler.min_delay must be >= 0")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("crawler.max_attempts must be > 0")
	}
	return nil
}

// FetcherConfig projects the crawl configuration onto the fetcher's knobs.
func (c Config) FetcherConfig() fetcher.Config {
	return fetcher.Config{
		UserAgent:      c.UserAgent,
		Concurrency:    c.Concurrency,
		RequestTimeout: c.RequestTimeout,
		MinDelay:       c.MinDelay,
	}
}
