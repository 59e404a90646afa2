// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package httpmux

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/radixpath/radixpath"
)

const namespace = "radixpath"

type metrics struct {
	lookups  *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(namespace, "", "lookups_total"),
		Help: "Count all path lookups by outcome.",
	}, []string{"outcome"})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: prometheus.BuildFQName(namespace, "", "lookup_duration_seconds"),
		Help: "Duration of path lookups.",
		Buckets: []float64{
			0.00000005,
			0.0000001, // 100ns
			0.00000025,
			0.0000005,
			0.000001, // 1µs
			0.0000025,
			0.000005,
			0.00001, // 10µs
			0.00005,
			0.0001, // 100µs
		},
	})

	var err error
	if lookups, err = register(reg, lookups); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &metrics{lookups: lookups, duration: duration}, nil
}

// register registers c with reg, or returns the collector already registered under the same
// descriptor, so that several muxes can share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) observe(kind radixpath.MatchKind, elapsed time.Duration) {
	m.lookups.WithLabelValues(kind.String()).Inc()
	m.duration.Observe(elapsed.Seconds())
}
