// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics wires run counters and durations for the engine's
// orchestration packages (keycache, fiprovider, sigcollector)
// straight onto github.com/prometheus/client_golang, using a label-map
// call shape so callers set metrics without reaching for the
// prometheus types directly.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// BucketHTTPReqs is the default histogram bucket set for millisecond
// durations, covering the typical range of request latencies.
var BucketHTTPReqs = []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000}

var (
	registerOnce sync.Mutex
	counters     = map[string]*prometheus.CounterVec{}
	histograms   = map[string]*prometheus.HistogramVec{}
	gauges       = map[string]*prometheus.GaugeVec{}
)

// CounterVecMeter is a labeled counter a caller can increment without
// reaching for the prometheus types directly.
type CounterVecMeter interface {
	AddWithLabel(v float64, labels map[string]string)
}

// HistogramVecMeter is a labeled histogram observer.
type HistogramVecMeter interface {
	ObserveWithLabels(v float64, labels map[string]string)
}

// GaugeVecMeter is a labeled gauge a caller can set without reaching for
// the prometheus types directly.
type GaugeVecMeter interface {
	SetWithLabel(v float64, labels map[string]string)
}

type counterVec struct{ vec *prometheus.CounterVec }

func (c counterVec) AddWithLabel(v float64, labels map[string]string) {
	c.vec.With(labels).Add(v)
}

type histogramVec struct{ vec *prometheus.HistogramVec }

func (h histogramVec) ObserveWithLabels(v float64, labels map[string]string) {
	h.vec.With(labels).Observe(v)
}

type gaugeVec struct{ vec *prometheus.GaugeVec }

func (g gaugeVec) SetWithLabel(v float64, labels map[string]string) {
	g.vec.With(labels).Set(v)
}

// CounterVec returns (registering on first use) a named, labeled counter.
func CounterVec(name string, labelNames []string) CounterVecMeter {
	registerOnce.Lock()
	defer registerOnce.Unlock()

	if vec, ok := counters[name]; ok {
		return counterVec{vec}
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: name,
	}, labelNames)
	prometheus.MustRegister(vec)
	counters[name] = vec
	return counterVec{vec}
}

// HistogramVec returns (registering on first use) a named, labeled histogram.
func HistogramVec(name string, labelNames []string, buckets []float64) HistogramVecMeter {
	registerOnce.Lock()
	defer registerOnce.Unlock()

	if vec, ok := histograms[name]; ok {
		return histogramVec{vec}
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    name,
		Buckets: buckets,
	}, labelNames)
	prometheus.MustRegister(vec)
	histograms[name] = vec
	return histogramVec{vec}
}

// GaugeVec returns (registering on first use) a named, labeled gauge.
func GaugeVec(name string, labelNames []string) GaugeVecMeter {
	registerOnce.Lock()
	defer registerOnce.Unlock()

	if vec, ok := gauges[name]; ok {
		return gaugeVec{vec}
	}
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: name,
		Help: name,
	}, labelNames)
	prometheus.MustRegister(vec)
	gauges[name] = vec
	return gaugeVec{vec}
}

// LazyLoad defers construction of a meter until first use, so a
// package-level var can declare a metric without a package-init
// ordering dependency on the registry.
func LazyLoad[T any](build func() T) func() T {
	var once sync.Once
	var val T
	return func() T {
		once.Do(func() { val = build() })
		return val
	}
}
