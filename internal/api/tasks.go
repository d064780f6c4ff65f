package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"taskhub/internal/deadline"
	"taskhub/internal/domain"
	"taskhub/internal/store"
)

type taskReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
	Position    *int    `json:"position"`
	ProjectID   *string `json:"project_id"`
}

// parseDueDate accepts a calendar date ("2006-01-02") or a full
// RFC 3339 timestamp, normalized to UTC midnight either way.
func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.New("due_date must be YYYY-MM-DD or RFC 3339")
		}
	}
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &day, nil
}

func validStatus(s string) bool {
	return s == domain.StatusTodo || s == domain.StatusInProgress || s == domain.StatusDone
}

func validPriority(p string) bool {
	return p == domain.PriorityLow || p == domain.PriorityMedium ||
		p == domain.PriorityHigh || p == domain.PriorityUrgent
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == nil || *req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.ProjectID == nil || *req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if _, ok := s.ownedProject(w, r, *req.ProjectID); !ok {
		return
	}

	t := domain.Task{Title: *req.Title, ProjectID: *req.ProjectID}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		t.Status = *req.Status
	}
	if req.Priority != nil {
		if !validPriority(*req.Priority) {
			writeError(w, http.StatusBadRequest, "invalid priority")
			return
		}
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t.DueDate = due
	}
	if req.Position != nil {
		t.Position = *req.Position
	}

	created, err := s.store.CreateTask(r.Context(), t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	status := r.URL.Query().Get("status")
	if status != "" && !validStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	var (
		tasks []domain.Task
		err   error
	)
	if projectID != "" {
		if _, ok := s.ownedProject(w, r, projectID); !ok {
			return
		}
		tasks, err = s.store.ListTasks(r.Context(), projectID, status)
	} else {
		tasks, err = s.store.ListTasksByOwner(r.Context(), currentUser(r).ID)
		if err == nil && status != "" {
			filtered := tasks[:0]
			for _, t := range tasks {
				if t.Status == status {
					filtered = append(filtered, t)
				}
			}
			tasks = filtered
		}
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// ownedTask loads a task and checks ownership through its project.
func (s *Server) ownedTask(w http.ResponseWriter, r *http.Request, id string) (domain.Task, bool) {
	t, err := s.store.GetTask(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return domain.Task{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return domain.Task{}, false
	}
	if _, ok := s.ownedProject(w, r, t.ProjectID); !ok {
		return domain.Task{}, false
	}
	return t, true
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.ownedTask(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.ownedTask(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		t.Status = *req.Status
	}
	if req.Priority != nil {
		if !validPriority(*req.Priority) {
			writeError(w, http.StatusBadRequest, "invalid priority")
			return
		}
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t.DueDate = due
	}
	if req.Position != nil {
		t.Position = *req.Position
	}
	if err := s.store.UpdateTask(r.Context(), t); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.ownedTask(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := s.store.DeleteTask(r.Context(), t.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

var priorityWeights = map[string]float64{
	domain.PriorityUrgent: 10,
	domain.PriorityHigh:   8,
	domain.PriorityMedium: 5,
	domain.PriorityLow:    2,
}

// priorityScore ranks a task by priority weight, due-date pressure and
// age. Overdue tasks grow exponentially with days overdue; tasks
// without a due date sit at a neutral factor.
func priorityScore(t domain.Task, now time.Time) float64 {
	weight, ok := priorityWeights[t.Priority]
	if !ok {
		weight = 5
	}

	dueFactor := 0.5
	if t.DueDate != nil {
		days := deadline.DaysUntilDue(*t.DueDate, now)
		if days < 0 {
			dueFactor = math.Pow(2, float64(-days))
		} else {
			dueFactor = 1 / float64(1+days)
		}
	}

	ageDays := int(now.Sub(t.CreatedAt).Hours() / 24)
	ageFactor := 1 + float64(ageDays)*0.1

	return weight * dueFactor * ageFactor
}

func (s *Server) prioritizedTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasksByOwner(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now().UTC()
	active := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status != domain.StatusDone {
			active = append(active, t)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return priorityScore(active[i], now) > priorityScore(active[j], now)
	})

	limit := 10
	if len(active) > limit {
		active = active[:limit]
	}
	writeJSON(w, http.StatusOK, active)
}
