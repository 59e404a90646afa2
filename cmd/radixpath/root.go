package main

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/radixpath/radixpath"
	"github.com/radixpath/radixpath/internal/config"
	"github.com/radixpath/radixpath/internal/logging"
)

const (
	flagConfig    = "config"
	flagEnvPrefix = "env-prefix"
)

// nolint: gochecknoglobals
var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "radixpath",
		Short: "Matches URL paths against a table of route patterns",
		Long: `radixpath resolves URL paths against route patterns such as /cmd/:tool/:sub
or /src/*filepath, using a radix tree. The route table is read from a yaml
configuration file and can be validated, queried, dumped or served over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP(flagConfig, "c", "", "Path to the configuration file")
	cmd.PersistentFlags().String(flagEnvPrefix, string(config.DefaultEnvVarPrefix),
		"Prefix of the environment variables overriding the configuration")

	cmd.AddCommand(
		newValidateCmd(),
		newMatchCmd(),
		newTreeCmd(),
		newServeCmd(),
	)

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configPath, _ := cmd.Flags().GetString(flagConfig)
	envPrefix, _ := cmd.Flags().GetString(flagEnvPrefix)

	return config.NewConfiguration(config.EnvVarPrefix(envPrefix), config.ConfigurationPath(configPath))
}

func newLogger(cmd *cobra.Command, conf *config.Configuration) zerolog.Logger {
	return logging.NewLogger(cmd.ErrOrStderr(), conf.Log)
}

// registerRoutes registers the routes of conf in r within a single transaction, with handler
// built by newHandler. Either every route is registered, or none.
func registerRoutes[H any](
	r *radixpath.Router[H],
	conf *config.Configuration,
	newHandler func(config.RouteConfig) H,
) error {
	return r.Updates(func(txn *radixpath.Txn[H]) error {
		if err := txn.SetDefault(newHandler(config.RouteConfig{
			Path:   "/",
			Status: conf.Default.Status,
			Body:   conf.Default.Body,
		})); err != nil {
			return err
		}

		for i, route := range conf.Routes {
			if err := txn.Register(route.Path, newHandler(route)); err != nil {
				return fmt.Errorf("routes[%d]: %w", i, err)
			}
		}

		return nil
	})
}

// newRouteTable builds a router mapping every configured route to its configuration.
func newRouteTable(conf *config.Configuration, handler slog.Handler) (*radixpath.Router[config.RouteConfig], error) {
	r, err := radixpath.New(radixpath.WithLogHandler[config.RouteConfig](handler))
	if err != nil {
		return nil, err
	}

	if err = registerRoutes(r, conf, func(route config.RouteConfig) config.RouteConfig {
		return route
	}); err != nil {
		return nil, err
	}

	return r, nil
}
