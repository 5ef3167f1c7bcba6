package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"quiz-assignment-service/internal/metrics"
)

// RouterOptions carries the transport settings taken from config.
type RouterOptions struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter wires every route onto a chi mux.
func NewRouter(h *Handler, ws *WSHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	// RemoteAddr stays the socket peer; forwarded headers are client controlled
	// and would let callers pick their own rate limit bucket.
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(requestLogger(h.log), instrument)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", h.Root)
	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if opts.RateLimitRPS > 0 {
			r.Use(newIPLimiter(opts.RateLimitRPS, opts.RateLimitBurst).middleware)
		}
		r.Post("/user", h.Register)
		r.Post("/token", h.Token)
	})

	r.Get("/ws/student/quiz/{id}", ws.ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/promote", h.Promote)
			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Get("/quiz", h.ListQuizzes)
				r.Post("/quiz", h.CreateQuiz)
				r.Get("/quiz/{id}", h.AdminQuiz)
				r.Get("/quiz/{id}/questions", h.AdminQuestions)
				r.Post("/assign", h.Assign)
			})
		})

		r.Route("/student", func(r chi.Router) {
			r.Get("/quiz", h.StudentQuizzes)
			r.Get("/quiz/{id}", h.StudentQuiz)
			r.Get("/quiz/{id}/questions", h.StudentQuestions)
			r.Post("/quiz/{id}/submit", h.Submit)
			r.Post("/quiz/{id}/grade", h.Grade)
		})
	})

	return r
}
