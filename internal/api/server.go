package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"taskhub/internal/auth"
	"taskhub/internal/domain"
	"taskhub/internal/hub"
	"taskhub/internal/store"
)

// Store is the data access the API needs, satisfied by *store.Store.
type Store interface {
	store.UserStore
	store.ProjectStore
	store.TaskStore
	store.NotificationStore

	GetDashboardCounts(ctx context.Context, ownerID string) (store.DashboardCounts, error)
	ListRecentProjects(ctx context.Context, ownerID string, limit int) ([]domain.Project, error)
	ListTasksDueBetween(ctx context.Context, ownerID string, from, to time.Time) ([]domain.Task, error)
	ListOverdueTasks(ctx context.Context, ownerID string, before time.Time) ([]domain.Task, error)
}

// Trigger fires a deadline scan on demand without blocking the caller.
type Trigger interface {
	TriggerNow(ctx context.Context)
}

// Options tune server behavior; zero values disable rate limiting.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	r     *chi.Mux
	store Store
	auth  *auth.Manager
	hub   *hub.Hub
	trig  Trigger
}

// NewServer wires the full HTTP surface: auth, CRUD for projects and
// tasks, notifications, dashboard, and the websocket endpoint.
func NewServer(st Store, am *auth.Manager, h *hub.Hub, trig Trigger, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	if opts.RateLimitRPS > 0 {
		r.Use(rateLimit(opts.RateLimitRPS, opts.RateLimitBurst))
	}

	s := &Server{r: r, store: st, auth: am, hub: h, trig: trig}

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", s.signup)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.me)

			r.Post("/projects", s.createProject)
			r.Get("/projects", s.listProjects)
			r.Get("/projects/{id}", s.getProject)
			r.Put("/projects/{id}", s.updateProject)
			r.Delete("/projects/{id}", s.deleteProject)

			r.Post("/tasks", s.createTask)
			r.Get("/tasks", s.listTasks)
			r.Get("/tasks/prioritized", s.prioritizedTasks)
			r.Get("/tasks/{id}", s.getTask)
			r.Put("/tasks/{id}", s.updateTask)
			r.Delete("/tasks/{id}", s.deleteTask)

			r.Get("/notifications", s.listNotifications)
			r.Patch("/notifications/{id}/read", s.markNotificationRead)
			r.Patch("/notifications/read-all", s.markAllNotificationsRead)
			r.Post("/notifications/check-deadlines", s.checkDeadlines)

			r.Get("/dashboard", s.dashboard)
		})
	})

	// The websocket handshake carries the token as a query parameter
	// since browsers cannot set headers on websocket connects.
	r.Get("/ws/notifications", s.wsNotifications)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
