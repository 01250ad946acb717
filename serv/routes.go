package serv

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// routes builds the HTTP handler tree
func (s *ExplainService) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if s.conf.RateLimit > 0 {
		r.Use(s.rateLimiter())
	}

	r.Post("/explain", s.handleExplain)
	r.Get("/health", s.handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: s.conf.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

// rateLimiter caps request throughput across the endpoint. Cost control:
// every miss is a paid upstream call.
func (s *ExplainService) rateLimiter() func(http.Handler) http.Handler {
	lim := rate.NewLimiter(rate.Limit(s.conf.RateLimit), s.conf.RateBurst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				renderJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
