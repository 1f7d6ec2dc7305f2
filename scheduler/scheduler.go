// Package scheduler runs the fixed-period epoch loop described in spec §4.8:
// dispatch, wait, collect, fire-auto, repeated on a deadline clock rather
// than a fixed sleep so that a slow epoch never compounds drift into the
// next one.
package scheduler

import (
	"context"
	"time"

	petri "github.com/bnetrun/bnet"
	"go.uber.org/zap"
)

// Event is one notification the scheduler emits for an attached Notifier:
// a single AUTO transition firing. The scheduler publishes exactly one
// Event per firing and none while the net is idle (§8 S8).
type Event struct {
	NetID        string
	TransitionID string
	FiredAt      time.Time
}

// Notifier is the scheduler's outbound notification sink. A nil Notifier is
// valid: the scheduler simply emits nothing. Implementations (eventbus.
// Publisher, for instance) must not block the epoch loop for long;
// Publish failures are logged and otherwise ignored (best-effort).
type Notifier interface {
	Publish(Event) error
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) error { return nil }

// Scheduler runs one engine goroutine driving a *petri.Net through the
// 4-phase epoch tick. The net's own mutex serializes this loop against
// external InsertToken/Trigger/Marking calls; Scheduler holds no lock of
// its own.
type Scheduler struct {
	net      *petri.Net
	period   time.Duration
	notifier Notifier
	log      *zap.Logger

	stop chan struct{}
	done chan struct{}
}

// Option configures a Scheduler at construction.
type Option func(*Scheduler)

// WithNotifier attaches a Notifier; events are published after each
// transition fires during the fire-auto phase.
func WithNotifier(n Notifier) Option {
	return func(s *Scheduler) { s.notifier = n }
}

// WithLogger attaches a structured logger; nil falls back to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// New builds a Scheduler over net with the given epoch period.
func New(net *petri.Net, period time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		net:      net,
		period:   period,
		notifier: nopNotifier{},
		log:      zap.NewNop(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run drives the epoch loop until ctx is done or Stop is called. It blocks
// until the loop has exited, at which point Run returns the error that
// stopped it (nil for a clean ctx/Stop exit).
func (s *Scheduler) Run(ctx context.Context) error {
	defer close(s.done)

	deadline := time.Now().Add(s.period)
	for {
		if err := s.net.ExecuteActions(); err != nil {
			s.log.Error("dispatch phase failed", zap.Error(err))
			return err
		}

		// A ctx cancellation or Stop during the wait ends the wait early; the
		// tick still runs its collect and fire-auto phases before Run returns.
		stopping := false
		select {
		case <-ctx.Done():
			stopping = true
		case <-s.stop:
			stopping = true
		case <-time.After(time.Until(deadline)):
		}
		// Advance by exactly one period regardless of how long dispatch or
		// the wait actually took, per spec §5 / SPEC_FULL §9 Open Question 1:
		// this is what keeps a slow epoch from compounding drift into the
		// next one (S7).
		deadline = deadline.Add(s.period)

		if err := s.collectAndFire(); err != nil {
			return err
		}
		if stopping {
			return nil
		}
	}
}

// Stop signals Run to exit after completing any in-flight tick and blocks
// until it has. Safe to call once; a second call panics on the closed
// channel, matching the teacher's single-shutdown controller idiom.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) collectAndFire() error {
	if err := s.net.CollectResults(); err != nil {
		s.log.Error("collect phase failed", zap.Error(err))
		return err
	}
	fired, err := s.net.FireAutoTransitions()
	if err != nil {
		s.log.Error("fire-auto phase failed", zap.Error(err))
		return err
	}
	for _, transitionID := range fired {
		ev := Event{NetID: s.net.ID(), TransitionID: transitionID, FiredAt: time.Now()}
		if err := s.notifier.Publish(ev); err != nil {
			s.log.Warn("notifier publish failed", zap.String("transition_id", transitionID), zap.Error(err))
		}
	}
	return nil
}
