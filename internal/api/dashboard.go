package api

import (
	"math"
	"net/http"
	"time"

	"taskhub/internal/domain"
	"taskhub/internal/store"
)

type dashboardStats struct {
	store.DashboardCounts
	CompletionRate float64 `json:"completion_rate"`
}

type dashboardResp struct {
	RecentProjects []domain.Project `json:"recent_projects"`
	TodayTasks     []domain.Task    `json:"today_tasks"`
	OverdueTasks   []domain.Task    `json:"overdue_tasks"`
	UpcomingTasks  []domain.Task    `json:"upcoming_tasks"`
	Stats          dashboardStats   `json:"stats"`
}

// dashboard assembles the overview: recent projects with task counts,
// today's tasks, overdue tasks, the next seven days, and totals.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := currentUser(r).ID

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	nextWeek := today.AddDate(0, 0, 8) // upcoming covers tomorrow..+7 days inclusive

	projects, err := s.store.ListRecentProjects(ctx, ownerID, 5)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	todayTasks, err := s.store.ListTasksDueBetween(ctx, ownerID, today, tomorrow)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	overdue, err := s.store.ListOverdueTasks(ctx, ownerID, today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	upcoming, err := s.store.ListTasksDueBetween(ctx, ownerID, tomorrow, nextWeek)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	counts, err := s.store.GetDashboardCounts(ctx, ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rate := 0.0
	if counts.TotalTasks > 0 {
		rate = math.Round(float64(counts.CompletedTasks)/float64(counts.TotalTasks)*1000) / 10
	}

	resp := dashboardResp{
		RecentProjects: projects,
		TodayTasks:     todayTasks,
		OverdueTasks:   overdue,
		UpcomingTasks:  upcoming,
		Stats:          dashboardStats{DashboardCounts: counts, CompletionRate: rate},
	}
	if resp.RecentProjects == nil {
		resp.RecentProjects = []domain.Project{}
	}
	if resp.TodayTasks == nil {
		resp.TodayTasks = []domain.Task{}
	}
	if resp.OverdueTasks == nil {
		resp.OverdueTasks = []domain.Task{}
	}
	if resp.UpcomingTasks == nil {
		resp.UpcomingTasks = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, resp)
}
