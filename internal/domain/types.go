package domain

import (
	"strings"
	"time"
)

// Task status values.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification types. The deadline scanner only produces
// TypeDeadlineApproaching; the rest come from CRUD paths.
const (
	TypeDeadlineApproaching = "deadline_approaching"
	TypeTaskAssigned        = "task_assigned"
	TypeStatusChange        = "status_change"
	TypePriorityChange      = "priority_change"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Project struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Deadline    *time.Time `json:"deadline,omitempty" db:"deadline"`
	OwnerID     string     `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// TaskCount is populated by list queries that join with tasks.
	TaskCount int `json:"task_count" db:"task_count"`
}

type Task struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	Position    int        `json:"position" db:"position"`
	ProjectID   string     `json:"project_id" db:"project_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// DeadlineTask is a task row denormalized with its owning project's
// name and owner, as returned by TaskStore.ListActiveWithDueDate.
// Carrying both avoids a second round trip per task during a scan.
type DeadlineTask struct {
	Task
	ProjectName string `json:"project_name" db:"project_name"`
	OwnerID     string `json:"owner_id" db:"owner_id"`
}

type Notification struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Type      string    `json:"type" db:"type"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	UserID    string    `json:"user_id" db:"user_id"`
	TaskID    *string   `json:"task_id,omitempty" db:"task_id"`
	ProjectID *string   `json:"project_id,omitempty" db:"project_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Humanize turns an enum value like "in_progress" into "In progress"
// for use in notification messages.
func Humanize(v string) string {
	v = strings.ReplaceAll(v, "_", " ")
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}
