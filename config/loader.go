package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/theoremus-urban-solutions/departure-sensor/feed"
)

// Defaults applied to fields left empty.
const (
	DefaultName            = "BVG"
	DefaultWalkingDistance = 10
	DefaultHorizon         = 60
	DefaultTimezone        = "Europe/Berlin"
	DefaultTimeoutMS       = 10000
	DefaultReadIntervalMS  = 60000
	DefaultPort            = 16181
	DefaultCacheDir        = "."
	DefaultCachePrefix     = "bvg_"
	DefaultQueue           = "departures"
)

// SearchPaths are tried in order when no explicit path is given.
var SearchPaths = []string{"config.yml", "./config/config.yml"}

// Load reads, defaults and validates the configuration. An empty path searches
// SearchPaths.
func Load(path string) (*AppConfig, error) {
	data, err := read(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML document into a validated configuration.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	loc, err := loadLocation("feed.timezone", cfg.Feed.Timezone)
	if err != nil {
		return nil, err
	}
	cfg.location = loc
	if cfg.Feed.FeedTimezone == "" {
		cfg.feedLocation = loc
	} else if cfg.feedLocation, err = loadLocation("feed.feed_timezone", cfg.Feed.FeedTimezone); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func read(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return data, nil
	}

	var errs []error
	for _, p := range SearchPaths {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("no config file found: %w", errors.Join(errs...))
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Sensor.Name == "" {
		c.Sensor.Name = DefaultName
	}
	if c.Feed.URL == "" {
		c.Feed.URL = feed.DefaultURLTemplate
	}
	if c.Feed.Format == "" {
		c.Feed.Format = feed.FormatJSON
	}
	if c.Feed.HorizonMinutes == 0 {
		c.Feed.HorizonMinutes = DefaultHorizon
	}
	if c.Feed.Timezone == "" {
		c.Feed.Timezone = DefaultTimezone
	}
	if c.Feed.TimeoutMS == 0 {
		c.Feed.TimeoutMS = DefaultTimeoutMS
	}
	if c.Feed.ReadIntervalMS == 0 {
		c.Feed.ReadIntervalMS = DefaultReadIntervalMS
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = DefaultCacheDir
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = DefaultCachePrefix
	}
	if c.Publish.AMQPURL != "" && c.Publish.Queue == "" {
		c.Publish.Queue = DefaultQueue
	}
}

func loadLocation(field, name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("validate config: %s %q: %w", field, name, err)
	}
	return loc, nil
}
