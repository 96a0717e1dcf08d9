package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the Prometheus HTTP metrics collector for the service.
// The collector registers against the default registry, so it is created once
// no matter how many server instances exist.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = fiberprometheus.New(serviceName)
	})
	return promInst
}

// MetricsMiddleware returns the Fiber handler that records per-request HTTP metrics.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}

// RegisterMetricsEndpoint exposes the Prometheus scrape endpoint on the app.
func RegisterMetricsEndpoint(p *fiberprometheus.FiberPrometheus, app *fiber.App, path string) {
	p.RegisterAt(app, path)
}
