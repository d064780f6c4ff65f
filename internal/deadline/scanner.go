package deadline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"taskhub/internal/domain"
)

// DedupWindow is the lookback used to avoid re-notifying for the same
// task and type. Note it is coarser than the per-threshold semantics:
// thresholds that fire less than 24h apart collapse into one
// notification.
const DedupWindow = 24 * time.Hour

// TaskSource is the scanner's read side.
type TaskSource interface {
	ListActiveWithDueDate(ctx context.Context) ([]domain.DeadlineTask, error)
}

// NotificationSink persists notifications and answers the dedup query.
type NotificationSink interface {
	ExistsRecent(ctx context.Context, taskID, ntype string, since time.Time) (bool, error)
	CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
}

// Publisher delivers a stored notification to the owning user's live
// channels, if any. Delivery is best effort; the stored record is the
// source of truth.
type Publisher interface {
	Publish(userID string, n domain.Notification)
}

// Scanner executes one full deadline pass over all eligible tasks.
type Scanner struct {
	tasks      TaskSource
	notifs     NotificationSink
	hub        Publisher
	thresholds []int
	now        func() time.Time
}

// NewScanner builds a scanner. hub may be nil when live delivery is
// not wired (e.g. in tests). now may be nil to use time.Now.
func NewScanner(tasks TaskSource, notifs NotificationSink, hub Publisher, thresholds []int, now func() time.Time) *Scanner {
	if now == nil {
		now = time.Now
	}
	return &Scanner{tasks: tasks, notifs: notifs, hub: hub, thresholds: thresholds, now: now}
}

// Run performs one scan pass and returns the number of notifications
// created. A failure fetching the task set aborts the pass; a failure
// persisting a single notification is logged and skipped, so the pass
// is best effort rather than transactional.
func (s *Scanner) Run(ctx context.Context) (int, error) {
	tasks, err := s.tasks.ListActiveWithDueDate(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing tasks for deadline scan: %w", err)
	}

	now := s.now()
	since := now.Add(-DedupWindow)
	created := 0

	for _, t := range tasks {
		for _, days := range s.thresholds {
			payload, ok := Evaluate(t, days, now)
			if !ok {
				continue
			}

			exists, err := s.notifs.ExistsRecent(ctx, t.ID, domain.TypeDeadlineApproaching, since)
			if err != nil {
				log.Error().Err(err).Str("task_id", t.ID).Int("threshold", days).
					Msg("dedup check failed")
				continue
			}
			if exists {
				continue
			}

			saved, err := s.notifs.CreateNotification(ctx, payload)
			if err != nil {
				log.Error().Err(err).Str("task_id", t.ID).Int("threshold", days).
					Msg("failed to persist deadline notification")
				continue
			}
			created++

			if s.hub != nil {
				s.hub.Publish(saved.UserID, saved)
			}
		}
	}

	log.Info().Int("created", created).Int("tasks", len(tasks)).Msg("deadline scan completed")
	return created, nil
}
