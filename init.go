package coviddash

import (
	"os"
	"strconv"

	"github.com/raykavin/coviddash/pkg/config"
	"github.com/raykavin/coviddash/pkg/logger"
	"github.com/raykavin/coviddash/pkg/logger/zerolog"
)

const (
	// Default configuration values
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
)

// Environment variable names
const (
	envLogLevel      = "COVIDDASH_LOG_LEVEL"
	envLogTimeFormat = "COVIDDASH_LOG_TIME_FORMAT"
	envLogColor      = "COVIDDASH_LOG_COLOR"
	envLogJSON       = "COVIDDASH_LOG_JSON"
)

// DefaultLog is the logger used when none is given to New
var DefaultLog logger.Logger

func init() {
	log, err := initLogger()
	if err != nil {
		panic(err)
	}

	DefaultLog = log
}

// initLogger creates a new logger instance configured from environment variables
func initLogger() (logger.Logger, error) {
	logColored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return nil, err
	}

	logJSON, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return nil, err
	}

	return NewLogger(config.LogConfig{
		Level:      getEnvWithDefault(envLogLevel, defaultLogLevel),
		TimeFormat: getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat),
		Colored:    logColored,
		JSON:       logJSON,
	})
}

// NewLogger builds the zerolog backed logger described by cfg
func NewLogger(cfg config.LogConfig) (logger.Logger, error) {
	level := cfg.Level
	switch level {
	case "warning":
		level = "warn"
	case "off":
		level = "disabled"
	}

	log, err := zerolog.New(zerolog.Options{
		Level:      level,
		TimeFormat: cfg.TimeFormat,
		Colored:    cfg.Colored,
		JSON:       cfg.JSON,
		Out:        os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	return zerolog.NewAdapter(log), nil
}

// getEnvWithDefault returns the value of the environment variable or the default if not set
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseBoolEnv gets a boolean environment variable with a default value
func parseBoolEnv(key, defaultValue string) (bool, error) {
	value := getEnvWithDefault(key, defaultValue)
	return strconv.ParseBool(value)
}
