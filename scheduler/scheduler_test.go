package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	petri "github.com/bnetrun/bnet"
	"github.com/bnetrun/bnet/action"
)

// fakeTimer completes SUCCESS duration after Callable is first invoked for a
// given token, mirroring actionimpl.TimerAction closely enough to exercise
// the scheduler without importing it (actionimpl depends on action, not the
// other way around, so pulling it in here would be a needless cycle risk).
type fakeTimer struct {
	duration time.Duration
	mu       sync.Mutex
	started  map[string]time.Time
}

func newFakeTimer(d time.Duration) *fakeTimer {
	return &fakeTimer{duration: d, started: map[string]time.Time{}}
}

func (f *fakeTimer) Callable(tok *petri.Token) petri.OutcomeKind {
	f.mu.Lock()
	start, ok := f.started[tok.ID()]
	if !ok {
		start = time.Now()
		f.started[tok.ID()] = start
	}
	f.mu.Unlock()

	if time.Since(start) >= f.duration {
		return petri.Success
	}
	return petri.InProgress
}

func buildTimerNet(t *testing.T, duration, period time.Duration, nTokens int) (*petri.Net, []*petri.Token) {
	t.Helper()
	place := petri.NewPlace("A")
	pool := action.NewWorkerPool(4)
	t.Cleanup(pool.Shutdown)
	place.SetDispatcher(action.NewAction(newFakeTimer(duration), pool))

	net, err := petri.New("timer-net", []*petri.Place{place}, nil, nil)
	if err != nil {
		t.Fatalf("petri.New: %v", err)
	}

	toks := make([]*petri.Token, nTokens)
	for i := 0; i < nTokens; i++ {
		tok, err := net.InsertToken("A", nil)
		if err != nil {
			t.Fatalf("InsertToken: %v", err)
		}
		toks[i] = tok
	}
	_ = period
	return net, toks
}

// TestS3AllTokensSucceedAfterEnoughEpochs mirrors spec.md S3: a TimerAction
// of 50ms under a 50ms epoch period should complete every token within a
// couple of epochs.
func TestS3AllTokensSucceedAfterEnoughEpochs(t *testing.T) {
	period := 50 * time.Millisecond
	net, _ := buildTimerNet(t, period, period, 5)

	sched := New(net, period)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	time.Sleep(3 * period)
	cancel()
	<-done

	snap := net.Snapshot()["A"]
	if snap.Busy != 0 || snap.Available != 5 {
		t.Fatalf("after 3 epochs: busy=%d available=%d, want busy=0 available=5", snap.Busy, snap.Available)
	}
	if snap.ByOutcome[petri.Success] != 5 {
		t.Fatalf("by-outcome SUCCESS = %d, want 5", snap.ByOutcome[petri.Success])
	}
}

// TestS4DelayedActionCarriesAcrossEpochs mirrors spec.md S4 at a shorter
// scale: a 200ms timer under a 20ms period keeps tokens busy for many
// epochs, then resolves.
func TestS4DelayedActionCarriesAcrossEpochs(t *testing.T) {
	period := 20 * time.Millisecond
	duration := 200 * time.Millisecond
	net, _ := buildTimerNet(t, duration, period, 3)

	sched := New(net, period)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	time.Sleep(3 * period)
	mid := net.Snapshot()["A"]
	if mid.Busy+mid.Available != 3 {
		t.Fatalf("mid-run total = %d, want 3", mid.Busy+mid.Available)
	}
	if mid.Available != 0 {
		t.Fatalf("mid-run available = %d, want 0 (still within the timer duration)", mid.Available)
	}

	time.Sleep(15 * period)
	final := net.Snapshot()["A"]
	if final.Busy != 0 || final.Available != 3 {
		t.Fatalf("final: busy=%d available=%d, want busy=0 available=3", final.Busy, final.Available)
	}
}

// recordingNotifier captures every published event for inspection.
type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingNotifier) Publish(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// TestS8EventPerTransitionFiring builds a net with one AUTO transition
// draining one token from a passive place, and asserts exactly one Event is
// published for the single firing and none once the net is idle.
func TestS8EventPerTransitionFiring(t *testing.T) {
	src := petri.NewPlace("src")
	dst := petri.NewPlace("dst")
	tr := &petri.Transition{
		ID:      "drain",
		Mode:    petri.Auto,
		Inputs:  []*petri.Arc{petri.NewInputArc("src", nil)},
		Outputs: []*petri.Arc{petri.NewOutputArc("dst", nil)},
	}
	net, err := petri.New("drain-net", []*petri.Place{src, dst}, []*petri.Transition{tr}, nil)
	if err != nil {
		t.Fatalf("petri.New: %v", err)
	}
	if _, err := net.InsertToken("src", nil); err != nil {
		t.Fatalf("InsertToken: %v", err)
	}

	notifier := &recordingNotifier{}
	period := 10 * time.Millisecond
	sched := New(net, period, WithNotifier(notifier))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	time.Sleep(8 * period)
	cancel()
	<-done

	if got := notifier.count(); got != 1 {
		t.Fatalf("events published = %d, want exactly 1 (one firing, then idle)", got)
	}
}

// TestS7DeadlinePacingDoesNotCompoundDrift asserts that a slow dispatch
// phase delays at most the epoch it occurs in: the scheduler should still
// land close to N*period total elapsed time rather than N*(period+overrun).
func TestS7DeadlinePacingDoesNotCompoundDrift(t *testing.T) {
	period := 20 * time.Millisecond
	net, _ := buildTimerNet(t, time.Millisecond, period, 1)

	sched := New(net, period)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	start := time.Now()
	go func() { done <- sched.Run(ctx) }()
	time.Sleep(10 * period)
	cancel()
	<-done
	elapsed := time.Since(start)

	// 10 epochs should take roughly 10*period; generous slack for scheduling
	// jitter but tight enough to catch compounding drift from a slow tick.
	if elapsed > 20*period {
		t.Fatalf("elapsed %v for 10 epochs of %v, drift looks compounded", elapsed, period)
	}
}
