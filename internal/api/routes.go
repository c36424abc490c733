package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"
)

type RouterOptions struct {
	AllowedOrigins []string
	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int
}

func (h *Handler) SetRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.HealthHandler)

		r.Post("/game/new", h.NewRoundHandler)
		r.Get("/game/{id}", h.GetRoundHandler)
		r.Post("/game/{id}/action", h.ActionHandler)

		r.Get("/player/{id}", h.GetPlayerHandler)
		r.Put("/player/{id}/balance", h.SetBalanceHandler)

		r.Get("/top", h.TopHandler)
	})
}

func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Player-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)
	if opts.RateLimit > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
	}

	h.SetRoutes(r)
	return r
}

func LoggerMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.WithFields(log.Fields{
					"request_id": middleware.GetReqID(r.Context()),
					"method":     r.Method,
					"uri":        r.RequestURI,
					"remote":     r.RemoteAddr,
					"status":     ww.Status(),
					"duration":   time.Since(start).String(),
				}).Info("http request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
