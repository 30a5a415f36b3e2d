package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/conneroisu/patterns/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID back to the client.
const RequestIDHeader = "X-Request-ID"

func (s *PreviewServer) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(cors.Handler(s.corsOptions()))

	r.Get("/health", s.health.HTTPHandler())

	routes := func(r chi.Router) {
		r.Get("/", s.handleIndex)
		r.Get("/api/state", s.handleState)
		r.Get("/api/components", s.handleComponents)
		r.Get("/api/readme", s.handleReadme)
		r.Get("/src/*", s.handleFragment)
		r.Handle("/assets/*", s.assetsHandler())
		if s.ws != nil {
			r.Get("/ws", s.ws.HandleWebSocket)
		}
		r.Handle("/*", s.publicHandler())
	}

	if base := s.base(); base == "/" {
		routes(r)
	} else {
		r.Route(strings.TrimSuffix(base, "/"), routes)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, base, http.StatusFound)
		})
	}

	return r
}

func (s *PreviewServer) corsOptions() cors.Options {
	origins := s.config.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}
}

// requestLogger tags each request with a uuid, stores a logger carrying it
// in the request context and logs the request once it finishes.
func (s *PreviewServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := s.logger.WithRequestID(id)
		ctx := logging.NewContext(r.Context(), logger)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Debug(ctx, "Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// requestLog returns the logger tagged with the request's ID.
func (s *PreviewServer) requestLog(r *http.Request) logging.Logger {
	return logging.FromContext(r.Context(), s.logger)
}

// securityHeaders keeps the shell and the fragments same-origin only. The
// preview frame is same-origin, so SAMEORIGIN still allows it.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
