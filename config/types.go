package config

import "time"

// Cache backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

// SensorConfig describes which departure the sensor reports
type SensorConfig struct {
	Name            string   `yaml:"name" validate:"required"`
	StopID          string   `yaml:"stop_id" validate:"required"`
	Destinations    []string `yaml:"destinations" validate:"required,min=1,dive,required"`
	WalkingDistance *int     `yaml:"walking_distance" validate:"omitempty,gte=0"`
	Index           int      `yaml:"index" validate:"gte=0"`
}

// FeedConfig contains remote departures feed configuration
type FeedConfig struct {
	URL            string `yaml:"url" validate:"required"`
	Format         string `yaml:"format" validate:"oneof=json gtfsrt"`
	HorizonMinutes int    `yaml:"horizon" validate:"gt=0"`
	StaleMinutes   int    `yaml:"stale_after" validate:"gte=0"` // 0 means horizon
	Timezone       string `yaml:"timezone" validate:"required"`
	FeedTimezone   string `yaml:"feed_timezone"` // empty means timezone
	TimeoutMS      int    `yaml:"timeoutMS" validate:"gt=0"`
	ReadIntervalMS int    `yaml:"readIntervalMS" validate:"gt=0"`
}

// CacheConfig selects and configures the snapshot store
type CacheConfig struct {
	Backend       string `yaml:"backend" validate:"oneof=file sqlite postgres redis"`
	Dir           string `yaml:"dir"`
	Prefix        string `yaml:"prefix"`
	DSN           string `yaml:"dsn" validate:"required_if=Backend sqlite,required_if=Backend postgres"`
	RedisAddr     string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" validate:"gte=0"`
}

// PublishConfig contains the optional AMQP publication settings
type PublishConfig struct {
	AMQPURL string `yaml:"amqp_url" validate:"omitempty,url"`
	Queue   string `yaml:"queue" validate:"required_with=AMQPURL"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Feed    FeedConfig    `yaml:"feed"`
	Cache   CacheConfig   `yaml:"cache"`
	Publish PublishConfig `yaml:"publish"`

	location     *time.Location
	feedLocation *time.Location
}

// Horizon returns the departure window requested from the feed.
func (c *AppConfig) Horizon() time.Duration {
	return time.Duration(c.Feed.HorizonMinutes) * time.Minute
}

// StaleAfter returns the freshness threshold.
func (c *AppConfig) StaleAfter() time.Duration {
	if c.Feed.StaleMinutes == 0 {
		return c.Horizon()
	}
	return time.Duration(c.Feed.StaleMinutes) * time.Minute
}

// Timeout returns the feed request timeout.
func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.Feed.TimeoutMS) * time.Millisecond
}

// Interval returns the time between two polls.
func (c *AppConfig) Interval() time.Duration {
	return time.Duration(c.Feed.ReadIntervalMS) * time.Millisecond
}

// Location returns the zone used for "now".
func (c *AppConfig) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// FeedLocation returns the zone of feed timestamps that carry no offset.
func (c *AppConfig) FeedLocation() *time.Location {
	if c.feedLocation == nil {
		return c.Location()
	}
	return c.feedLocation
}

// MinLead returns the walking distance in minutes.
func (c *AppConfig) MinLead() int {
	if c.Sensor.WalkingDistance == nil {
		return DefaultWalkingDistance
	}
	return *c.Sensor.WalkingDistance
}
