// Package config loads the dashboard configuration using Viper
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "COVIDDASH"

// Defaults
const (
	DefaultAPIBaseURL    = "https://coronavirus.data.gov.uk/api"
	DefaultLayoutBaseURL = "https://coronavirus.data.gov.uk/public/assets/frontpage/pageLayouts/"
	DefaultCachePath     = ":memory:"
	DefaultCataloguePath = "./coviddash.sqlite"
	DefaultMapStyleURL   = "https://coronavirus.data.gov.uk/public/assets/geo/style.json"
	DefaultBaseGeoURL    = "https://coronavirus.data.gov.uk/public/assets/geo/"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the dashboard configuration
type Config struct {
	API       APIConfig
	Server    ServerConfig
	Cache     CacheConfig
	Catalogue CatalogueConfig
	Map       MapConfig
	Log       LogConfig
}

// APIConfig holds the dashboard API client configuration
type APIConfig struct {
	BaseURL       string        `validate:"required,url"`
	LayoutBaseURL string        `validate:"required"`
	MaxRetries    int           `validate:"gte=0,lte=10"`
	Timeout       time.Duration `validate:"gt=0"`
}

// ServerConfig holds the local dashboard server configuration
type ServerConfig struct {
	Port  int `validate:"gte=1,lte=65535"`
	Debug bool
}

// CacheConfig holds the response cache configuration
type CacheConfig struct {
	Enabled bool
	Path    string        `validate:"required_if=Enabled true"`
	TTL     time.Duration `validate:"gte=0"`
}

// CatalogueConfig holds the metric catalogue database configuration
type CatalogueConfig struct {
	Path string `validate:"required"`
}

// MapConfig locates the basemap style and boundary files of map figures
type MapConfig struct {
	Style   string `validate:"required,url"`
	BaseGeo string `validate:"required,url"`
}

// LogConfig holds the logger configuration
type LogConfig struct {
	Level      string `validate:"oneof=disabled off trace debug info warn warning error fatal"`
	TimeFormat string
	Colored    bool
	JSON       bool
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultAPIBaseURL)
	v.SetDefault("api.layout_base_url", DefaultLayoutBaseURL)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", DefaultCachePath)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("catalogue.path", DefaultCataloguePath)
	v.SetDefault("map.style", DefaultMapStyleURL)
	v.SetDefault("map.base_geo", DefaultBaseGeoURL)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.time_format", time.RFC3339)
	v.SetDefault("log.color", true)
	v.SetDefault("log.json", false)
}

// Load reads the configuration from the environment and, when path is not
// empty, from a YAML file. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeout, err := duration(v, "api.timeout")
	if err != nil {
		return nil, err
	}

	ttl, err := duration(v, "cache.ttl")
	if err != nil {
		return nil, err
	}

	config := &Config{
		API: APIConfig{
			BaseURL:       strings.TrimSuffix(v.GetString("api.base_url"), "/"),
			LayoutBaseURL: v.GetString("api.layout_base_url"),
			MaxRetries:    v.GetInt("api.max_retries"),
			Timeout:       timeout,
		},
		Server: ServerConfig{
			Port:  v.GetInt("server.port"),
			Debug: v.GetBool("server.debug"),
		},
		Cache: CacheConfig{
			Enabled: v.GetBool("cache.enabled"),
			Path:    v.GetString("cache.path"),
			TTL:     ttl,
		},
		Catalogue: CatalogueConfig{
			Path: v.GetString("catalogue.path"),
		},
		Map: MapConfig{
			Style:   v.GetString("map.style"),
			BaseGeo: v.GetString("map.base_geo"),
		},
		Log: LogConfig{
			Level:      strings.ToLower(v.GetString("log.level")),
			TimeFormat: v.GetString("log.time_format"),
			Colored:    v.GetBool("log.color"),
			JSON:       v.GetBool("log.json"),
		},
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// duration parses values such as "30s" or "1d"
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return 0, nil
	}

	parsed, err := str2duration.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return parsed, nil
}

// Validate checks every field of config
func Validate(config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: configuration is nil", ErrInvalidConfig)
	}

	err := validatorInstance().Struct(config)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("%s failed on %q", field.Namespace(), field.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(messages, "; "))
}
