package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/radixpath/radixpath"
	"github.com/radixpath/radixpath/httpmux"
	"github.com/radixpath/radixpath/internal/config"
	"github.com/radixpath/radixpath/internal/logging"
)

const (
	metricsPath     = "/metrics"
	shutdownTimeout = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves the route table over HTTP",
		Long: `Serves the static response of each configured route. Occurrences of {name} in a
response body are replaced with the value of the captured parameter name. Metrics
are exposed on /metrics when enabled.`,
		Example: "radixpath serve -c routes.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(cmd, conf)

			ln, err := net.Listen("tcp", conf.Serve.Address)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, ln, conf, logger)
		},
	}
}

// serve serves the route table on ln until ctx is done, then shuts the server down gracefully.
func serve(ctx context.Context, ln net.Listener, conf *config.Configuration, logger zerolog.Logger) error {
	handler, err := newHandler(conf, logging.NewSlogHandler(&logger))
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("address", ln.Addr().String()).Int("routes", len(conf.Routes)).Msg("Starting server")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err = <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func newHandler(conf *config.Configuration, logHandler slog.Handler) (http.Handler, error) {
	opts := []httpmux.Option{
		httpmux.WithRedirectTrailingSlash(conf.Serve.RedirectTrailingSlash),
		httpmux.WithLogger(slog.New(logHandler)),
		httpmux.WithRouterOptions(radixpath.WithLogHandler[http.Handler](logHandler)),
		httpmux.WithMiddleware(
			httpmux.Recovery(httpmux.DefaultHandleRecovery),
			httpmux.Logger(logHandler),
		),
	}

	var reg *prometheus.Registry
	if conf.Serve.Metrics {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, httpmux.WithMetrics(reg))
	}

	mux, err := httpmux.New(opts...)
	if err != nil {
		return nil, err
	}

	if err = registerRoutes(mux.Router(), conf, func(route config.RouteConfig) http.Handler {
		return responseHandler(route)
	}); err != nil {
		return nil, err
	}

	if reg == nil {
		return mux, nil
	}

	metrics := promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == metricsPath {
			metrics.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	}), nil
}

func responseHandler(route config.RouteConfig) http.HandlerFunc {
	status := statusOf(route.Status)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, renderBody(route.Body, radixpath.ParamsFromContext(r.Context())))
	}
}

func statusOf(status int) int {
	if status == 0 {
		return http.StatusOK
	}

	return status
}

// renderBody replaces every occurrence of "{name}" in body with the value of the parameter name.
func renderBody(body string, params radixpath.Params) string {
	if len(params) == 0 || !strings.Contains(body, "{") {
		return body
	}

	pm := params.Map()
	oldnew := make([]string, 0, pm.Len()*2)
	for k, v := range pm.All() {
		oldnew = append(oldnew, fmt.Sprintf("{%s}", k), v)
	}

	return strings.NewReplacer(oldnew...).Replace(body)
}
