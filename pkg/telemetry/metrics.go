package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "sparkle").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for decoration duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: a new registry owned by the collector.
	Registry *prometheus.Registry
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "sparkle",
		Buckets:   prometheus.DefBuckets,
	}
}

// Collector records sparkle metrics.
type Collector struct {
	registry *prometheus.Registry

	decorations        *prometheus.CounterVec
	decorationDuration prometheus.Histogram
	collisions         *prometheus.CounterVec
	updates            *prometheus.CounterVec
	wireEvents         *prometheus.CounterVec
	saves              *prometheus.CounterVec
	clients            prometheus.Gauge
}

// New creates a collector and registers its metrics.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		registry: config.Registry,

		decorations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "decorations_total",
			Help:        "Total number of decoration passes, redecorations included",
			ConstLabels: config.ConstLabels,
		}, []string{"depth", "result"}),

		decorationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "decoration_duration_seconds",
			Help:        "Decoration pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		collisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "collisions_total",
			Help:        "Total number of keys overwritten by a bead",
			ConstLabels: config.ConstLabels,
		}, []string{"bead"}),

		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of state updates by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		wireEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "wire_events_total",
			Help:        "Total number of wired events by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"target", "event", "result"}),

		saves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "persist_saves_total",
			Help:        "Total number of persisted state writes by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		clients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "clients",
			Help:        "Number of connected surface clients",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveDecoration implements bead.Observer.
func (c *Collector) ObserveDecoration(depth int, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.decorations.WithLabelValues(strconv.Itoa(depth), result).Inc()
	c.decorationDuration.Observe(elapsed.Seconds())
}

// ObserveCollision implements bead.Observer.
func (c *Collector) ObserveCollision(bead string, keys []string) {
	c.collisions.WithLabelValues(bead).Add(float64(len(keys)))
}

// ObserveUpdate implements sparkle.Metrics.
func (c *Collector) ObserveUpdate(result string) {
	c.updates.WithLabelValues(result).Inc()
}

// ObserveWire implements sparkle.Metrics.
func (c *Collector) ObserveWire(target, event, result string) {
	c.wireEvents.WithLabelValues(target, event, result).Inc()
}

// ObserveSave implements persist.SaveObserver.
func (c *Collector) ObserveSave(result string) {
	c.saves.WithLabelValues(result).Inc()
}

// ClientConnected increments the connected client gauge.
func (c *Collector) ClientConnected() {
	c.clients.Inc()
}

// ClientDisconnected decrements the connected client gauge.
func (c *Collector) ClientDisconnected() {
	c.clients.Dec()
}
