// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry served by Handler. It carries the Go runtime collectors.
var Registry = prometheus.NewRegistry()

var (
	storeOps = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "mortgage_store_operations_total",
		Help: "Record store round-trips by operation and result.",
	}, []string{"op", "result"})

	httpRequests = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, matched route and status code.",
	}, []string{"method", "route", "status"})

	backfillUpdates = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "mortgage_tag_backfill_updates_total",
		Help: "Packages whose badge tags were rewritten by the backfill job.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveStore counts one store call. err == nil counts as "ok".
func ObserveStore(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOps.WithLabelValues(op, result).Inc()
}

// AddBackfillUpdates adds n rewritten rows.
func AddBackfillUpdates(n int) {
	backfillUpdates.Add(float64(n))
}

// StoreOperations returns the current count for op/result.
func StoreOperations(op, result string) prometheus.Counter {
	return storeOps.WithLabelValues(op, result)
}

// RequestCounter counts every request after the handler chain finished.
func RequestCounter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		return err
	}
}

// Handler serves Registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
