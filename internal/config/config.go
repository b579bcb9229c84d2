package config

import (
	"errors"
	"os"
	"time"
)

// ErrMissingDatabaseURL is returned when no database connection string is configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// Default iptv-org feed locations. Country metadata ships as an embedded
// resource (internal/fetcher/countries.json) and needs no URL.
const (
	DefaultChannelsURL      = "https://iptv-org.github.io/api/channels.json"
	DefaultStreamsURL       = "https://iptv-org.github.io/api/streams.json"
	DefaultLogosURL         = "https://iptv-org.github.io/api/logos.json"
	DefaultPlaylistTemplate = "https://raw.githubusercontent.com/iptv-org/iptv/master/countries/%s.m3u"
)

// Config holds application configuration (DB, Redis, feeds, timeouts).
type Config struct {
	DatabaseURL string        `yaml:"database_url" env:"DATABASE_URL"`
	RedisURL    string        `yaml:"redis_url" env:"REDIS_URL"`
	ServerPort  string        `yaml:"server_port" env:"SERVER_PORT"`
	UserAgent   string        `yaml:"user_agent" env:"FETCHER_USER_AGENT"`
	FeedTimeout time.Duration `yaml:"feed_timeout" env:"FEED_TIMEOUT"`
	// ProbeTimeout bounds stream health probes, HLS validation fetches,
	// and per-country playlist downloads.
	ProbeTimeout time.Duration `yaml:"probe_timeout" env:"PROBE_TIMEOUT"`

	ChannelsURL      string `yaml:"channels_url" env:"CHANNELS_URL"`
	StreamsURL       string `yaml:"streams_url" env:"STREAMS_URL"`
	LogosURL         string `yaml:"logos_url" env:"LOGOS_URL"`
	PlaylistTemplate string `yaml:"playlist_template" env:"PLAYLIST_URL_TEMPLATE"`

	// RefreshOnEmpty makes empty country/channel query results trigger a
	// full catalog refresh once before re-querying. Every empty-but-valid
	// query becomes a potential network refresh, so it can be switched off.
	RefreshOnEmpty bool `yaml:"refresh_on_empty" env:"REFRESH_ON_EMPTY"`
}

// Load builds config from environment variables.
// If DATABASE_URL is not set, Load tries to load .env.local and .env from the
// current directory first. DATABASE_URL is required; everything else is optional.
func Load() (*Config, error) {
	if os.Getenv("DATABASE_URL") == "" {
		loadEnvFiles()
	}
	c := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		ServerPort:       os.Getenv("SERVER_PORT"),
		UserAgent:        os.Getenv("FETCHER_USER_AGENT"),
		ChannelsURL:      os.Getenv("CHANNELS_URL"),
		StreamsURL:       os.Getenv("STREAMS_URL"),
		LogosURL:         os.Getenv("LOGOS_URL"),
		PlaylistTemplate: os.Getenv("PLAYLIST_URL_TEMPLATE"),
		RefreshOnEmpty:   true,
	}
	if s := os.Getenv("FEED_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			c.FeedTimeout = d
		}
	}
	if s := os.Getenv("PROBE_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			c.ProbeTimeout = d
		}
	}
	if s := os.Getenv("REFRESH_ON_EMPTY"); s == "false" || s == "0" {
		c.RefreshOnEmpty = false
	}
	c.applyDefaults()
	if c.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.ServerPort == "" {
		c.ServerPort = "8080"
	}
	if c.UserAgent == "" {
		c.UserAgent = "ChannelVault/1.0"
	}
	if c.FeedTimeout <= 0 {
		c.FeedTimeout = 30 * time.Second
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 10 * time.Second
	}
	if c.ChannelsURL == "" {
		c.ChannelsURL = DefaultChannelsURL
	}
	if c.StreamsURL == "" {
		c.StreamsURL = DefaultStreamsURL
	}
	if c.LogosURL == "" {
		c.LogosURL = DefaultLogosURL
	}
	if c.PlaylistTemplate == "" {
		c.PlaylistTemplate = DefaultPlaylistTemplate
	}
}
