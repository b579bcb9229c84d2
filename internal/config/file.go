package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	DatabaseURL      string `yaml:"database_url"`
	RedisURL         string `yaml:"redis_url"`
	ServerPort       string `yaml:"server_port"`
	UserAgent        string `yaml:"user_agent"`
	FeedTimeout      string `yaml:"feed_timeout"`
	ProbeTimeout     string `yaml:"probe_timeout"`
	ChannelsURL      string `yaml:"channels_url"`
	StreamsURL       string `yaml:"streams_url"`
	LogosURL         string `yaml:"logos_url"`
	PlaylistTemplate string `yaml:"playlist_template"`
	RefreshOnEmpty   *bool  `yaml:"refresh_on_empty"`
}

// LoadFromFile loads config from a YAML file. database_url is required.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	c := &Config{
		DatabaseURL:      f.DatabaseURL,
		RedisURL:         f.RedisURL,
		ServerPort:       f.ServerPort,
		UserAgent:        f.UserAgent,
		ChannelsURL:      f.ChannelsURL,
		StreamsURL:       f.StreamsURL,
		LogosURL:         f.LogosURL,
		PlaylistTemplate: f.PlaylistTemplate,
		RefreshOnEmpty:   true,
	}
	if f.FeedTimeout != "" {
		if d, err := time.ParseDuration(f.FeedTimeout); err == nil {
			c.FeedTimeout = d
		}
	}
	if f.ProbeTimeout != "" {
		if d, err := time.ParseDuration(f.ProbeTimeout); err == nil {
			c.ProbeTimeout = d
		}
	}
	if f.RefreshOnEmpty != nil {
		c.RefreshOnEmpty = *f.RefreshOnEmpty
	}
	c.applyDefaults()
	return c, nil
}
