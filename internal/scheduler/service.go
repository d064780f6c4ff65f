package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ScanFunc runs one deadline scan pass and returns the number of
// notifications created.
type ScanFunc func(ctx context.Context) (int, error)

// Service fires a deadline scan on a fixed cron cadence, independent
// of HTTP traffic. Overlapping firings are skipped: if a scan is still
// running when the next trigger arrives, that trigger is dropped and
// the following cycle picks up the work.
type Service struct {
	schedule cron.Schedule
	loc      *time.Location
	scan     ScanFunc
	grace    time.Duration

	inFlight atomic.Bool
	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// New parses a standard 5-field cron expression evaluated in the given
// IANA timezone. The expression and zone are validated up front so a
// bad configuration fails at startup, not at the first firing.
func New(cronExpr, timezone string, grace time.Duration, scan ScanFunc) (*Service, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parsing cron expression %q: %w", cronExpr, err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}
	return &Service{
		schedule: schedule,
		loc:      loc,
		scan:     scan,
		grace:    grace,
		stop:     make(chan struct{}),
	}, nil
}

// Start runs the firing loop until ctx is canceled or Stop is called.
// Call it once per process, in its own goroutine.
func (s *Service) Start(ctx context.Context) {
	next := s.schedule.Next(time.Now().In(s.loc))
	log.Info().Time("next_run", next).Msg("deadline scheduler started")

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-timer.C:
			s.fire(ctx)
			next = s.schedule.Next(time.Now().In(s.loc))
			timer.Reset(time.Until(next))
		}
	}
}

// Stop halts the firing loop and waits up to the configured grace
// period for an in-flight scan to finish.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.grace):
		log.Warn().Dur("grace", s.grace).Msg("deadline scan still running at shutdown")
	}
}

// TriggerNow fires a scan without waiting for the schedule. It returns
// immediately; the scan runs in the background and its result is only
// observable via logs and stored notifications. Safe to call while a
// scheduled pass is running; the overlapping request is skipped. The
// firing joins the stop wait group before TriggerNow returns, so a
// Stop racing the trigger still waits for the scan.
func (s *Service) TriggerNow(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.fire(ctx)
	}()
}

// fire joins the wait group before claiming the in-flight flag so Stop
// never observes a claimed-but-untracked scan.
func (s *Service) fire(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	if !s.inFlight.CompareAndSwap(false, true) {
		log.Warn().Msg("deadline scan already running, skipping this firing")
		return
	}
	defer s.inFlight.Store(false)

	start := time.Now()
	created, err := s.scan(ctx)
	if err != nil {
		log.Error().Err(err).Msg("deadline scan failed")
		return
	}
	log.Info().Int("created", created).Dur("elapsed", time.Since(start)).
		Msg("deadline scan finished")
}
