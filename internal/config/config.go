// Package config holds the server settings read from the environment and
// command line, and builds the logger they describe.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Environment variables read by FromEnv.
const (
	EnvLogLevel  = "VISION_MCP_LOG_LEVEL"
	EnvLogFormat = "VISION_MCP_LOG_FORMAT"
	EnvEngine    = "VISION_MCP_ENGINE"
	EnvListen    = "VISION_MCP_LISTEN"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the runtime configuration of the server.
type Config struct {
	// LogLevel is any level logrus understands: trace, debug, info, warn,
	// error, fatal or panic.
	LogLevel string
	// LogFormat is FormatText or FormatJSON.
	LogFormat string
	// Engine names the vision engine, "native" or "opencv".
	Engine string
	// Listen is the websocket listen address. Empty means stdio.
	Listen string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: FormatText,
		Engine:    "native",
	}
}

// FromEnv returns Default overlaid with any VISION_MCP_* variables that are
// set and non-empty.
func FromEnv() Config {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) Config {
	cfg := Default()
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&cfg.LogLevel, EnvLogLevel)
	set(&cfg.LogFormat, EnvLogFormat)
	set(&cfg.Engine, EnvEngine)
	set(&cfg.Listen, EnvListen)

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.Engine = strings.ToLower(cfg.Engine)
	return cfg
}

// Validate reports the first setting that cannot be used. Engine names are
// checked against engines, the names the caller can construct.
func (c Config) Validate(engines ...string) error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("invalid log format %q: want %s or %s", c.LogFormat, FormatText, FormatJSON)
	}
	if len(engines) > 0 {
		known := false
		for _, e := range engines {
			if c.Engine == e {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("invalid engine %q: want one of %s", c.Engine, strings.Join(engines, ", "))
		}
	}
	return nil
}

// NewLogger builds a logger writing to w at the configured level and format.
// The config must have passed Validate.
func (c Config) NewLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if c.LogFormat == FormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return logger
}
