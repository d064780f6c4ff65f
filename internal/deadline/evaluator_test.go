package deadline

import (
	"strings"
	"testing"
	"time"

	"taskhub/internal/domain"
)

func dayPtr(t time.Time) *time.Time { return &t }

func testTask(due *time.Time, status, priority string) domain.DeadlineTask {
	return domain.DeadlineTask{
		Task: domain.Task{
			ID:        "tsk_1",
			Title:     "T1",
			Status:    status,
			Priority:  priority,
			DueDate:   due,
			ProjectID: "prj_1",
		},
		ProjectName: "Launch",
		OwnerID:     "usr_1",
	}
}

func TestEvaluateExactMatch(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueIn   int // days from now
		days    int
		want    bool
	}{
		{"due tomorrow matches 1", 1, 1, true},
		{"due tomorrow does not match 3", 1, 3, false},
		{"due in 3 matches 3", 3, 3, true},
		{"due in 7 matches 7", 7, 7, true},
		{"due in 2 matches nothing in {1,3,7}", 2, 1, false},
		{"due today matches 0", 0, 0, true},
		{"overdue never matches positive threshold", -1, 1, false},
		{"overdue does not match 0", -3, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := now.AddDate(0, 0, tt.dueIn)
			task := testTask(dayPtr(due), domain.StatusTodo, domain.PriorityMedium)
			_, got := Evaluate(task, tt.days, now)
			if got != tt.want {
				t.Errorf("Evaluate(due in %d, threshold %d) = %v, want %v", tt.dueIn, tt.days, got, tt.want)
			}
		})
	}
}

func TestEvaluateIgnoresTimeOfDay(t *testing.T) {
	// Late evening today vs early morning due date tomorrow is still
	// one whole calendar day apart.
	now := time.Date(2026, 8, 28, 23, 50, 0, 0, time.UTC)
	due := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	task := testTask(dayPtr(due), domain.StatusInProgress, domain.PriorityHigh)
	if _, ok := Evaluate(task, 1, now); !ok {
		t.Error("expected a match one calendar day before the due date")
	}
}

func TestEvaluateSkipsDoneAndMissingDueDate(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 1)

	if _, ok := Evaluate(testTask(dayPtr(due), domain.StatusDone, domain.PriorityHigh), 1, now); ok {
		t.Error("done task must never match")
	}
	if _, ok := Evaluate(testTask(nil, domain.StatusTodo, domain.PriorityHigh), 1, now); ok {
		t.Error("task without a due date must never match")
	}
}

func TestEvaluatePayload(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 3)
	task := testTask(dayPtr(due), domain.StatusInProgress, domain.PriorityUrgent)

	n, ok := Evaluate(task, 3, now)
	if !ok {
		t.Fatal("expected a match")
	}
	if n.Title != "Task Deadline Approaching: T1" {
		t.Errorf("title = %q", n.Title)
	}
	for _, want := range []string{"3 day(s)", "Priority: Urgent", "Status: In progress", "Project: Launch"} {
		if !strings.Contains(n.Message, want) {
			t.Errorf("message %q missing %q", n.Message, want)
		}
	}
	if n.Type != domain.TypeDeadlineApproaching {
		t.Errorf("type = %q", n.Type)
	}
	if n.UserID != "usr_1" {
		t.Errorf("user id = %q", n.UserID)
	}
	if n.TaskID == nil || *n.TaskID != "tsk_1" {
		t.Errorf("task id = %v", n.TaskID)
	}
	if n.ProjectID == nil || *n.ProjectID != "prj_1" {
		t.Errorf("project id = %v", n.ProjectID)
	}
}
