// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package httpmux

import (
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"
)

var stdErr = log.New(os.Stderr, "", log.LstdFlags)

// Middleware wraps an http.Handler.
type Middleware func(next http.Handler) http.Handler

// Logger returns middleware that logs request information using the provided slog.Handler.
// It logs the remote address, HTTP method, request path, status code, response size and latency.
func Logger(handler slog.Handler) Middleware {
	logger := slog.New(handler)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newRecorder(w)
			next.ServeHTTP(rec, r)
			latency := time.Since(start)

			lvl := level(rec.Status())
			if !logger.Enabled(r.Context(), lvl) {
				return
			}

			attrs := []slog.Attr{
				slog.Int("status", rec.Status()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.String()),
				slog.Int("size", rec.Size()),
				slog.Duration("latency", roundLatency(latency)),
			}
			if location := rec.Header().Get("Location"); location != "" {
				attrs = append(attrs, slog.String("location", location))
			}

			logger.LogAttrs(r.Context(), lvl, remoteHost(r), attrs...)
		})
	}
}

// RecoveryFunc is a function type that defines how to handle panics that occur during the
// handling of an HTTP request.
type RecoveryFunc func(w http.ResponseWriter, r *http.Request, err any)

// Recovery is a middleware that captures panics and recovers from them. It takes a custom handle function
// that will be called with the value recovered from the panic.
// Note that the middleware check if the panic is caused by http.ErrAbortHandler and re-panic if true
// allowing the http server to handle it as an abort.
func Recovery(handle RecoveryFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newRecorder(w)
			defer recovery(rec, r, handle)
			next.ServeHTTP(rec, r)
		})
	}
}

// DefaultHandleRecovery is a default implementation of the RecoveryFunc.
// It logs the recovered panic error to stderr, including the stack trace.
// If the response has not been written yet and the error is not caused by a broken connection,
// it sets the status code to http.StatusInternalServerError and writes a generic error message.
func DefaultHandleRecovery(w http.ResponseWriter, _ *http.Request, err any) {
	stdErr.Printf("[PANIC] %q panic recovered\n%s", err, debug.Stack())
	if rec, ok := w.(*recorder); ok && rec.Written() {
		return
	}
	if !connIsBroken(err) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func recovery(w http.ResponseWriter, r *http.Request, handle RecoveryFunc) {
	if err := recover(); err != nil {
		if abortErr, ok := err.(error); ok && errors.Is(abortErr, http.ErrAbortHandler) {
			panic(abortErr)
		}
		handle(w, r, err)
	}
}

func connIsBroken(err any) bool {
	if ne, ok := err.(*net.OpError); ok {
		var se *os.SyscallError
		if errors.As(ne, &se) {
			seStr := strings.ToLower(se.Error())
			return strings.Contains(seStr, "broken pipe") || strings.Contains(seStr, "connection reset by peer")
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "unknown"
	}
	return host
}

func level(status int) slog.Level {
	switch {
	case status >= 200 && status < 300:
		return slog.LevelInfo
	case status >= 300 && status < 400:
		return slog.LevelDebug
	case status >= 400 && status < 500:
		return slog.LevelWarn
	case status >= 500:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func roundLatency(d time.Duration) time.Duration {
	switch {
	case d < 1*time.Microsecond:
		return d.Round(100 * time.Nanosecond)
	case d < 1*time.Millisecond:
		return d.Round(10 * time.Microsecond)
	case d < 10*time.Millisecond:
		return d.Round(100 * time.Microsecond)
	case d < 100*time.Millisecond:
		return d.Round(1 * time.Millisecond)
	case d < 1*time.Second:
		return d.Round(10 * time.Millisecond)
	case d < 10*time.Second:
		return d.Round(100 * time.Millisecond)
	default:
		return d.Round(1 * time.Second)
	}
}
