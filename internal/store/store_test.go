package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"taskhub/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, email string) domain.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), domain.User{Email: email, PasswordHash: "x", Name: "Test"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func seedProject(t *testing.T, s *Store, ownerID, name string) domain.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), domain.Project{Name: name, OwnerID: ownerID})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return p
}

func seedTask(t *testing.T, s *Store, projectID string, due *time.Time, status string) domain.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), domain.Task{
		Title:     "task",
		Status:    status,
		Priority:  domain.PriorityHigh,
		DueDate:   due,
		ProjectID: projectID,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return task
}

func TestUserRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "a@example.com")
	got, err := s.GetUserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || !got.IsActive {
		t.Errorf("got %+v", got)
	}

	if _, err := s.GetUser(ctx, "usr_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: err = %v, want ErrNotFound", err)
	}

	// Duplicate email violates the unique constraint.
	if _, err := s.CreateUser(ctx, domain.User{Email: "a@example.com", PasswordHash: "y"}); err == nil {
		t.Error("duplicate email should fail")
	}
}

func TestProjectCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "a@example.com")
	p := seedProject(t, s, u.ID, "Launch")
	seedTask(t, s, p.ID, nil, domain.StatusTodo)
	seedTask(t, s, p.ID, nil, domain.StatusDone)

	got, err := s.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.TaskCount != 2 {
		t.Errorf("task count = %d, want 2", got.TaskCount)
	}

	got.Name = "Relaunch"
	if err := s.UpdateProject(ctx, got); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}

	list, err := s.ListProjects(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Relaunch" {
		t.Errorf("list = %+v", list)
	}

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if err := s.DeleteProject(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestListActiveWithDueDate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "a@example.com")
	p := seedProject(t, s, u.ID, "Launch")

	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	withDue := seedTask(t, s, p.ID, &due, domain.StatusInProgress)
	seedTask(t, s, p.ID, nil, domain.StatusTodo)           // no due date
	seedTask(t, s, p.ID, &due, domain.StatusDone)          // finished

	rows, err := s.ListActiveWithDueDate(ctx)
	if err != nil {
		t.Fatalf("ListActiveWithDueDate: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.ID != withDue.ID {
		t.Errorf("id = %q", row.ID)
	}
	if row.ProjectName != "Launch" {
		t.Errorf("project name = %q", row.ProjectName)
	}
	if row.OwnerID != u.ID {
		t.Errorf("owner = %q", row.OwnerID)
	}
	if row.DueDate == nil || !row.DueDate.Equal(due) {
		t.Errorf("due date = %v", row.DueDate)
	}
}

func TestNotificationDedupQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "a@example.com")
	p := seedProject(t, s, u.ID, "Launch")
	task := seedTask(t, s, p.ID, nil, domain.StatusTodo)

	taskID := task.ID
	projectID := p.ID
	n, err := s.CreateNotification(ctx, domain.Notification{
		Title:     "Task Deadline Approaching: task",
		Message:   "due soon",
		Type:      domain.TypeDeadlineApproaching,
		UserID:    u.ID,
		TaskID:    &taskID,
		ProjectID: &projectID,
	})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if n.ID == "" || n.CreatedAt.IsZero() {
		t.Fatalf("persisted notification missing id or timestamp: %+v", n)
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	exists, err := s.ExistsRecent(ctx, taskID, domain.TypeDeadlineApproaching, since)
	if err != nil {
		t.Fatalf("ExistsRecent: %v", err)
	}
	if !exists {
		t.Error("expected a recent notification for the task")
	}

	// Outside the window, or for a different type, nothing matches.
	future := time.Now().UTC().Add(time.Hour)
	if exists, _ := s.ExistsRecent(ctx, taskID, domain.TypeDeadlineApproaching, future); exists {
		t.Error("notification outside the window should not match")
	}
	if exists, _ := s.ExistsRecent(ctx, taskID, domain.TypeStatusChange, since); exists {
		t.Error("different type should not match")
	}
}

func TestNotificationReadFlags(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "a@example.com")
	for i := 0; i < 3; i++ {
		if _, err := s.CreateNotification(ctx, domain.Notification{
			Title: "n", Message: "m", Type: domain.TypeTaskAssigned, UserID: u.ID,
		}); err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
	}

	unread, err := s.ListNotifications(ctx, u.ID, false, 0)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(unread) != 3 {
		t.Fatalf("unread = %d, want 3", len(unread))
	}

	marked, err := s.MarkRead(ctx, unread[0].ID, u.ID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !marked.IsRead {
		t.Error("MarkRead should flip the read flag")
	}
	if _, err := s.MarkRead(ctx, unread[1].ID, "usr_other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign user mark: err = %v, want ErrNotFound", err)
	}

	updated, err := s.MarkAllRead(ctx, u.ID)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if updated != 2 {
		t.Errorf("MarkAllRead updated %d rows, want 2", updated)
	}

	all, err := s.ListNotifications(ctx, u.ID, true, 0)
	if err != nil {
		t.Fatalf("ListNotifications(all): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}
}

func TestDashboardQueries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "a@example.com")
	p := seedProject(t, s, u.ID, "Launch")

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	inThree := today.AddDate(0, 0, 3)

	seedTask(t, s, p.ID, &today, domain.StatusTodo)
	seedTask(t, s, p.ID, &yesterday, domain.StatusInProgress)
	seedTask(t, s, p.ID, &inThree, domain.StatusTodo)
	done := seedTask(t, s, p.ID, &today, domain.StatusDone)
	_ = done

	todayTasks, err := s.ListTasksDueBetween(ctx, u.ID, today, today.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListTasksDueBetween: %v", err)
	}
	if len(todayTasks) != 1 {
		t.Errorf("today = %d, want 1", len(todayTasks))
	}

	overdue, err := s.ListOverdueTasks(ctx, u.ID, today)
	if err != nil {
		t.Fatalf("ListOverdueTasks: %v", err)
	}
	if len(overdue) != 1 {
		t.Errorf("overdue = %d, want 1", len(overdue))
	}

	counts, err := s.GetDashboardCounts(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetDashboardCounts: %v", err)
	}
	if counts.TotalProjects != 1 || counts.TotalTasks != 4 || counts.CompletedTasks != 1 {
		t.Errorf("counts = %+v", counts)
	}
}
