package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/leventyarali/vocanizer-sub000/internal/api/middleware"
	"github.com/leventyarali/vocanizer-sub000/internal/service"
	"github.com/leventyarali/vocanizer-sub000/internal/service/auth"
)

// RouterDeps are the dependencies of the HTTP API.
type RouterDeps struct {
	TaskService service.TaskService
	JWTService  auth.JWTService
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
	Logger      *slog.Logger
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Trace(log))
	r.Use(chimw.Recoverer)

	taskHandler := NewTaskHandler(deps.TaskService, log)
	authMiddleware := middleware.NewAuthMiddleware(deps.JWTService)

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.RateLimiter.LimitByIP)
		r.Use(authMiddleware.Authenticate)
		r.Use(deps.RateLimiter.Limit)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.CreateTask)
			r.Get("/", taskHandler.ListTasks)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Post("/complete", taskHandler.CompleteTask)
				r.Get("/occurrences", taskHandler.ListOccurrences)
				r.Get("/calendar.ics", taskHandler.ExportCalendar)
			})
		})

		r.Post("/recurrence/preview", taskHandler.PreviewRecurrence)
	})

	r.Get("/health", Health)

	return r
}
