package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithDisplayInterval sets how often stored statuses are recomputed.
func WithDisplayInterval(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		if d > 0 {
			s.displayInterval = d
		}
	}
}

// WithNotifyInterval sets how often a notification pass runs.
func WithNotifyInterval(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		if d > 0 {
			s.notifyInterval = d
		}
	}
}

// Supervisor drives the manager on two cadences: a fast display cadence that
// only recomputes statuses, and a slower notify cadence that runs Tick.
type Supervisor struct {
	manager         *Manager
	displayInterval time.Duration
	notifyInterval  time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSupervisor creates a supervisor for manager.
func NewSupervisor(manager *Manager, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		manager:         manager,
		displayInterval: time.Second,
		notifyInterval:  time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		logrus.Warn("supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(childCtx, s.done)

	logrus.Infof("supervisor started (display=%s, notify=%s)", s.displayInterval, s.notifyInterval)
}

// Stop ends the loop and waits for in-flight dispatches to finish.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.running = false
	s.mu.Unlock()

	<-done
	s.manager.Wait()
	logrus.Info("supervisor stopped")
}

// Running reports whether the loop is active.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Supervisor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	display := time.NewTicker(s.displayInterval)
	defer display.Stop()
	notify := time.NewTicker(s.notifyInterval)
	defer notify.Stop()

	// settle statuses and fire anything already due before the first tick
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-display.C:
			s.manager.Refresh()
		case <-notify.C:
			s.tick(ctx)
		}
	}
}

func (s *Supervisor) tick(ctx context.Context) {
	if _, err := s.manager.Tick(ctx); err != nil && ctx.Err() == nil {
		logrus.Errorf("notification pass failed: %v", err)
	}
}
