package backup

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mentorhub/project-tracker/internal/model"
)

// Scheduler drives recurring backups off a single one-minute ticker.
// Only one schedule is active at a time: Apply swaps the frequency in
// place instead of stacking timers.  Slot mapping:
//
//	hourly  – top of every hour
//	daily   – 02:00
//	weekly  – Sunday 02:00
//	monthly – 1st of the month 02:00
type Scheduler struct {
	mu   sync.Mutex
	freq string

	run    func(ctx context.Context)
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler constructs a Scheduler that invokes run at each slot
// of the given frequency.  run is expected to consult the
// backupService toggle itself so that disabling the service stops
// scheduled runs without tearing the loop down.
func NewScheduler(freq string, run func(ctx context.Context)) *Scheduler {
	return &Scheduler{freq: freq, run: run}
}

// Apply replaces the active frequency.  The previous schedule is
// implicitly cancelled: the single loop only fires for the current
// value.
func (s *Scheduler) Apply(freq string) {
	s.mu.Lock()
	s.freq = freq
	s.mu.Unlock()
	log.Printf("backup: schedule set to %s", freq)
}

// Start begins the schedule loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.mu.Lock()
				freq := s.freq
				s.mu.Unlock()
				if due(freq, now.UTC()) {
					s.run(ctx)
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for it to drain.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// due reports whether t falls on the firing slot for freq.  The
// caller ticks once per minute, so minute equality fires exactly once
// per slot.
func due(freq string, t time.Time) bool {
	switch freq {
	case model.FrequencyHourly:
		return t.Minute() == 0
	case model.FrequencyDaily:
		return t.Hour() == 2 && t.Minute() == 0
	case model.FrequencyWeekly:
		return t.Weekday() == time.Sunday && t.Hour() == 2 && t.Minute() == 0
	case model.FrequencyMonthly:
		return t.Day() == 1 && t.Hour() == 2 && t.Minute() == 0
	}
	return false
}
