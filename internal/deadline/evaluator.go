package deadline

import (
	"fmt"
	"time"

	"taskhub/internal/domain"
)

// midnight truncates a timestamp to its calendar date (UTC midnight).
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntilDue returns the whole calendar days between now's date and
// due's date. Negative values mean the due date has passed.
func DaysUntilDue(due, now time.Time) int {
	return int(midnight(due).Sub(midnight(now)).Hours() / 24)
}

// Evaluate decides whether now's date is exactly days calendar days
// before the task's due date. This is an exact match, not "due within
// days": a task due tomorrow matches 1 but not 3 or 7, and a task
// whose due date has passed never matches a positive threshold.
//
// On a match it returns the notification payload to persist, without
// an id or creation time (the store assigns those).
func Evaluate(t domain.DeadlineTask, days int, now time.Time) (domain.Notification, bool) {
	if t.DueDate == nil || t.Status == domain.StatusDone {
		return domain.Notification{}, false
	}
	if DaysUntilDue(*t.DueDate, now) != days {
		return domain.Notification{}, false
	}

	taskID := t.ID
	projectID := t.ProjectID
	return domain.Notification{
		Title: "Task Deadline Approaching: " + t.Title,
		Message: fmt.Sprintf("Your task is due in %d day(s). Priority: %s, Status: %s, Project: %s",
			days, domain.Humanize(t.Priority), domain.Humanize(t.Status), t.ProjectName),
		Type:      domain.TypeDeadlineApproaching,
		UserID:    t.OwnerID,
		TaskID:    &taskID,
		ProjectID: &projectID,
	}, true
}
