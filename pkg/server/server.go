// Package server 把 CatalogService 暴露成 HTTP 接口
package server

import (
	"log/slog"
	"net/http"

	"simplemercari/pkg/config"
	"simplemercari/pkg/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultMaxUploadMB = 32

type Server struct {
	svc       *service.CatalogService
	logger    *slog.Logger
	frontURL  string
	maxUpload int64
}

func New(svc *service.CatalogService, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mb := cfg.MaxUploadMB
	if mb <= 0 {
		mb = defaultMaxUploadMB
	}
	return &Server{
		svc:       svc,
		logger:    logger,
		frontURL:  cfg.FrontURL,
		maxUpload: mb << 20,
	}
}

// Handler 组装路由和中间件
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", instrument("root", s.handleRoot))
	mux.Handle("POST /items", instrument("add_item", s.handleAddItem))
	mux.Handle("GET /items", instrument("list_items", s.handleListItems))
	mux.Handle("GET /search", instrument("search", s.handleSearch))
	mux.Handle("GET /items/{id}", instrument("get_item", s.handleGetItem))
	mux.Handle("GET /image/{filename}", instrument("image", s.handleImage))
	mux.Handle("GET /categories", instrument("categories", s.handleCategories))
	mux.Handle("GET /metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.frontURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	})

	// 由外到内：日志 -> panic 恢复 -> tracing -> CORS -> 路由
	var h http.Handler = c.Handler(mux)
	h = otelhttp.NewHandler(h, "request")
	h = RecoveryMiddleware(s.logger, h)
	return LoggingMiddleware(s.logger, h)
}
