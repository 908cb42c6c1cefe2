// Package metrics exposes Prometheus instrumentation for the HTTP server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered for one server instance.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	logins   *prometheus.CounterVec
	recipes  prometheus.Counter
	users    prometheus.Counter
}

// New creates a registry with process, Go runtime and application collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipebook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recipebook",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipebook",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		recipes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recipebook",
			Name:      "recipes_created_total",
			Help:      "Recipes created.",
		}),
		users: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recipebook",
			Name:      "users_registered_total",
			Help:      "Users registered.",
		}),
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		m.requests, m.duration, m.logins, m.recipes, m.users,
	)
	return m
}

// Middleware records request count and latency. Unmatched routes share one label.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return gin.WrapH(h)
}

// LoginSucceeded counts a successful login.
func (m *Metrics) LoginSucceeded() { m.logins.WithLabelValues("success").Inc() }

// LoginFailed counts a rejected login.
func (m *Metrics) LoginFailed() { m.logins.WithLabelValues("failure").Inc() }

// RecipeCreated counts a stored recipe.
func (m *Metrics) RecipeCreated() { m.recipes.Inc() }

// UserRegistered counts a new user.
func (m *Metrics) UserRegistered() { m.users.Inc() }
