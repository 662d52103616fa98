package registry

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	searchURL string
	username  string
	password  string
	timeout   time.Duration
	transport http.RoundTripper

	precision  string
	versionTTL time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSearchURL sets the search engine endpoint. Required.
func WithSearchURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchURL = url
	})
}

// WithBasicAuth sets credentials for the search engine.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithTimeout bounds every engine request. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithTransport replaces the HTTP round tripper used to reach the engine.
func WithTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithMappingPrecision sets the geo_shape precision for new catalogs.
// Default: 500m.
func WithMappingPrecision(p string) Option {
	return optionFunc(func(c *clientConfig) {
		c.precision = p
	})
}

// WithVersionTTL sets how long the engine version is cached. Zero probes on every call.
// Default: 1 minute.
func WithVersionTTL(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.versionTTL = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
