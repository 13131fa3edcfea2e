package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/handler"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/middleware"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/logger"
)

// Handler registers routes on the API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Config tunes cross-cutting router behavior.
type Config struct {
	RateLimit     middleware.RateLimiterConfig
	CORS          middleware.CORSConfig
	MetricsPrefix string
}

// Router assembles the gin engine, middleware chain and route groups.
type Router struct {
	engine       *gin.Engine
	health       *handler.Health
	availability Handler
	appointments Handler
	metrics      *httpMetrics
}

type httpMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func New(
	log *logger.Logger,
	health *handler.Health,
	availability Handler,
	appointments Handler,
	cfg Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	prefix := cfg.MetricsPrefix
	if prefix == "" {
		prefix = "scheduling_api"
	}
	m := &httpMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
	}

	r := &Router{
		engine:       engine,
		health:       health,
		availability: availability,
		appointments: appointments,
		metrics:      m,
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(log),
		r.metricsMiddleware(),
		middleware.CORS(cfg.CORS),
	)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	engine.Use(rateLimiter.RateLimit())

	return r
}

// Setup wires all route groups.
func (r *Router) Setup() {
	r.health.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	r.availability.RegisterRoutes(api)
	r.appointments.RegisterRoutes(api)
}

// Engine exposes the underlying gin engine for the HTTP server.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
