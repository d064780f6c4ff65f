package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"taskhub/internal/domain"
	"taskhub/internal/store"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	includeRead := r.URL.Query().Get("include_read") == "true"
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifs, err := s.store.ListNotifications(r.Context(), currentUser(r).ID, includeRead, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if notifs == nil {
		notifs = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, notifs)
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.MarkRead(r.Context(), chi.URLParam(r, "id"), currentUser(r).ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	updated, err := s.store.MarkAllRead(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// checkDeadlines fires a deadline scan in the background and returns
// immediately. The created count shows up in logs and in subsequent
// notification queries, not in this response.
func (s *Server) checkDeadlines(w http.ResponseWriter, r *http.Request) {
	// The scan must outlive this request, so it does not inherit the
	// request context.
	s.trig.TriggerNow(context.Background())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "deadline check started"})
}
