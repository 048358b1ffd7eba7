package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig 是路由配置
type RouterConfig struct {
	// Timeout 单个请求的超时，0 表示 30s
	Timeout time.Duration
	// CORSOrigins 允许跨域的来源，为空则不启用 CORS
	CORSOrigins []string
	// Gatherer 非 nil 时挂载 GET /metrics
	Gatherer prometheus.Gatherer
}

// NewRouter 创建 chi 路由：
//
//	GET  /health
//	GET  /metrics
//	GET  /api/v1/teams
//	POST /api/v1/predict
//	POST /api/v1/predict/batch
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newAccessLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", h.HealthCheck)
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/teams", h.Teams)
		r.Post("/predict", h.Predict)
		r.Post("/predict/batch", h.PredictBatch)
	})
	return r
}
