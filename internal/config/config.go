// Package config loads event-finder settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/event-finder/internal/logger"
	"github.com/pfrederiksen/event-finder/internal/scraper"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	ListenAddress string        `yaml:"listen_address"` // :10000
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"` // searches stop at 90% of this
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
}

type ScraperConfig struct {
	BaseURL          string        `yaml:"base_url"`
	Fetcher          string        `yaml:"fetcher"` // http | colly
	Timeout          time.Duration `yaml:"timeout"` // per request
	Delay            time.Duration `yaml:"delay"`   // minimum time between requests
	MaxEvents        int           `yaml:"max_events"`
	ScrapeIndividual *bool         `yaml:"scrape_individual"`
	UserAgents       []string      `yaml:"user_agents"`
	DedupeLinks      bool          `yaml:"dedupe_links"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Scraper ScraperConfig `yaml:"scraper"`
	Log     LogConfig     `yaml:"log"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	var c Config
	c.applyDefaults()
	c.applyEnv()
	return c
}

// Load reads the YAML file at path and fills in defaults for anything it
// leaves out. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	c.applyDefaults()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":10000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 120 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}

	if c.Scraper.BaseURL == "" {
		c.Scraper.BaseURL = scraper.DefaultBaseURL
	}
	if c.Scraper.Fetcher == "" {
		c.Scraper.Fetcher = scraper.FetcherHTTP
	}
	if c.Scraper.Timeout == 0 {
		c.Scraper.Timeout = scraper.DefaultTimeout
	}
	if c.Scraper.Delay == 0 {
		c.Scraper.Delay = scraper.DefaultInterval
	}
	if c.Scraper.MaxEvents <= 0 {
		c.Scraper.MaxEvents = scraper.DefaultMaxEvents
	}
	if c.Scraper.ScrapeIndividual == nil {
		enabled := true
		c.Scraper.ScrapeIndividual = &enabled
	}
	if len(c.Scraper.UserAgents) == 0 {
		c.Scraper.UserAgents = append([]string(nil), scraper.DefaultUserAgents...)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// applyEnv lets the PORT environment variable override the listen port
func (c *Config) applyEnv() {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		c.Server.ListenAddress = ":" + port
	}
}

// Validate checks values that defaults cannot repair
func (c Config) Validate() error {
	switch c.Scraper.Fetcher {
	case scraper.FetcherHTTP, scraper.FetcherColly:
	default:
		return fmt.Errorf("invalid scraper.fetcher %q (must be %q or %q)", c.Scraper.Fetcher, scraper.FetcherHTTP, scraper.FetcherColly)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	if c.Scraper.Delay < 0 {
		return fmt.Errorf("invalid scraper.delay %s: must not be negative", c.Scraper.Delay)
	}
	return nil
}

// IndividualPages reports whether event detail pages should be fetched
func (s ScraperConfig) IndividualPages() bool {
	return s.ScrapeIndividual == nil || *s.ScrapeIndividual
}

// ScraperOptions converts the scraper section into pipeline options
func (c Config) ScraperOptions() scraper.Options {
	return scraper.Options{
		MaxEvents:        c.Scraper.MaxEvents,
		Interval:         c.Scraper.Delay,
		ScrapeIndividual: c.Scraper.IndividualPages(),
		BaseURL:          c.Scraper.BaseURL,
		DedupeLinks:      c.Scraper.DedupeLinks,
	}
}
