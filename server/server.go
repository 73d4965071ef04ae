// Package server 提供 bookrec 的 HTTP API。
//
//	GET    /api/books?category=&search=&where=
//	GET    /api/book/{id}
//	POST   /api/recommend
//	GET    /api/similar/{id}?n=5
//	GET    /api/categories
//	GET    /api/methods
//	POST   /api/ratings
//	GET    /api/ratings/{userID}
//	DELETE /api/ratings/{userID}/{bookID}
//	GET    /api/stats
//	GET    /healthz
//	GET    /metrics
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/bookrec/conf"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/recommend"
)

// Server 把 recommend.Engine 暴露为 HTTP API。
type Server struct {
	engine *recommend.Engine
	cfg    conf.Server
	router chi.Router
}

func New(engine *recommend.Engine, cfg conf.Server) *Server {
	s := &Server{engine: engine, cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler 返回完整的路由，测试中配合 httptest 使用。
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestID)
	r.Use(accessLog)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", headerRequestID},
			ExposedHeaders: []string{headerRequestID},
			MaxAge:         86400,
		}))
		if s.cfg.RateLimitRequests > 0 {
			window := s.cfg.RateLimitWindow
			if window <= 0 {
				window = time.Minute
			}
			r.Use(httprate.LimitByIP(s.cfg.RateLimitRequests, window))
		}

		r.Get("/books", s.handleBooks)
		r.Get("/book/{id}", s.handleBook)
		r.Post("/recommend", s.handleRecommend)
		r.Get("/similar/{id}", s.handleSimilar)
		r.Get("/categories", s.handleCategories)
		r.Get("/methods", s.handleMethods)
		r.Get("/stats", s.handleStats)

		r.Post("/ratings", s.handleAddRating)
		r.Get("/ratings/{userID}", s.handleUserRatings)
		r.Delete("/ratings/{userID}/{bookID}", s.handleDeleteRating)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// ListenAndServe 监听 cfg.Addr，ctx 取消后优雅退出。
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	logging.Info().Dur("timeout", timeout).Msg("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
