package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "heatmap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "heatmap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "heatmap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Render metrics
	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "heatmap",
		Subsystem: "render",
		Name:      "renders_total",
		Help:      "Total heatmap renders by outcome",
	}, []string{"outcome"})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "heatmap",
		Subsystem: "render",
		Name:      "duration_seconds",
		Help:      "Duration of a full heatmap render",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	TilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "heatmap",
		Subsystem: "render",
		Name:      "tiles_total",
		Help:      "Total tiles rendered by kind",
	}, []string{"kind"})

	TileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "heatmap",
		Subsystem: "render",
		Name:      "tile_duration_seconds",
		Help:      "Duration of a single tile render",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	// Static map metrics
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "heatmap",
		Subsystem: "staticmap",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of static map downloads",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	FetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "heatmap",
		Subsystem: "staticmap",
		Name:      "fetch_errors_total",
		Help:      "Total failed static map downloads",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "heatmap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "heatmap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// ObserveRender records a finished heatmap render.
func ObserveRender(d time.Duration, err error) {
	if err != nil {
		RendersTotal.WithLabelValues("error").Inc()
		return
	}
	RendersTotal.WithLabelValues("ok").Inc()
	RenderDuration.Observe(d.Seconds())
}

// Tiles feeds per-tile render events into the render metrics.
type Tiles struct{}

// ObserveTile implements heatmap.TileObserver.
func (Tiles) ObserveTile(empty bool, d time.Duration) {
	kind := "dense"
	if empty {
		kind = "empty"
	}
	TilesTotal.WithLabelValues(kind).Inc()
	TileDuration.Observe(d.Seconds())
}

// StaticMap feeds base map download and cache events into the metrics.
type StaticMap struct{}

// ObserveFetch implements staticmap.Observer.
func (StaticMap) ObserveFetch(d time.Duration, err error) {
	if err != nil {
		FetchErrors.Inc()
		return
	}
	FetchDuration.Observe(d.Seconds())
}

// ObserveCache implements staticmap.Observer.
func (StaticMap) ObserveCache(hit bool) {
	if hit {
		CacheHits.WithLabelValues("staticmap").Inc()
	} else {
		CacheMisses.WithLabelValues("staticmap").Inc()
	}
}
