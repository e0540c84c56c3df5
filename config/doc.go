// Package config handles application configuration loading and validation.
//
// Configuration is loaded from a YAML file, filled with defaults and validated using
// struct tags. Without an explicit path the loader searches config.yml and
// ./config/config.yml.
package config
