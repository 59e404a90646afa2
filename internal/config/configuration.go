package config

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrConfiguration is returned when the configuration cannot be loaded or is invalid.
var ErrConfiguration = errors.New("configuration error")

type (
	// EnvVarPrefix is the prefix of the environment variables overriding the configuration file.
	EnvVarPrefix string
	// ConfigurationPath is the path of the yaml configuration file. It may be empty.
	ConfigurationPath string
)

const DefaultEnvVarPrefix EnvVarPrefix = "RADIXPATH_"

type Configuration struct {
	Log     LoggingConfig  `koanf:"log"`
	Serve   ServeConfig    `koanf:"serve"`
	Default ResponseConfig `koanf:"default"`
	Routes  []RouteConfig  `koanf:"routes"  validate:"dive"`
}

type LogFormat string

const (
	LogTextFormat LogFormat = "text"
	LogJSONFormat LogFormat = "json"
)

type LoggingConfig struct {
	Format LogFormat     `koanf:"format" validate:"oneof=text json"`
	Level  zerolog.Level `koanf:"level"`
}

type ServeConfig struct {
	Address               string `koanf:"address"                 validate:"required"`
	RedirectTrailingSlash bool   `koanf:"redirect_trailing_slash"`
	Metrics               bool   `koanf:"metrics"`
}

// ResponseConfig is the static response served when no route matches.
type ResponseConfig struct {
	Status int    `koanf:"status" validate:"min=100,max=599"`
	Body   string `koanf:"body"`
}

// RouteConfig is a route pattern with its static response. Occurrences of "{name}" in Body
// are replaced with the value of the captured parameter name.
type RouteConfig struct {
	Path   string `koanf:"path"   validate:"required"`
	Status int    `koanf:"status" validate:"omitempty,min=100,max=599"`
	Body   string `koanf:"body"`
}

func defaultConfig() Configuration {
	return Configuration{
		Log: LoggingConfig{
			Format: LogTextFormat,
			Level:  zerolog.InfoLevel,
		},
		Serve: ServeConfig{
			Address:               ":8080",
			RedirectTrailingSlash: true,
			Metrics:               true,
		},
		Default: ResponseConfig{
			Status: http.StatusNotFound,
			Body:   http.StatusText(http.StatusNotFound),
		},
	}
}
