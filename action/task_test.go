package action

import (
	"testing"
	"time"

	petri "github.com/bnetrun/bnet"
)

func TestTaskStatusBeforeRunIsNotStarted(t *testing.T) {
	task := NewTask(func() petri.OutcomeKind { return petri.Success })
	if got := task.Status(0); got != petri.NotStarted {
		t.Fatalf("Status before Run = %v, want NOT_STARTED", got)
	}
}

func TestTaskStatusAfterRunIsOutcome(t *testing.T) {
	task := NewTask(func() petri.OutcomeKind { return petri.Success })
	task.Run()
	if got := task.Status(0); got != petri.Success {
		t.Fatalf("Status after Run = %v, want SUCCESS", got)
	}
}

func TestTaskStatusZeroTimeoutNeverBlocks(t *testing.T) {
	release := make(chan struct{})
	task := NewTask(func() petri.OutcomeKind {
		<-release
		return petri.Success
	})
	go task.Run()
	time.Sleep(10 * time.Millisecond)
	if got := task.Status(0); got != petri.QueryTimeout {
		t.Fatalf("Status(0) on a running task = %v, want QUERY_TIMEOUT", got)
	}
	close(release)
}

func TestTaskStatusWaitsUpToTimeout(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	task := NewTask(func() petri.OutcomeKind {
		close(started)
		<-release
		return petri.Failure
	})
	go task.Run()
	<-started
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	got := task.Status(500 * time.Millisecond)
	if got != petri.Failure {
		t.Fatalf("Status(500ms) = %v, want FAILURE", got)
	}
}

func TestTaskStatusTimesOutIfStillRunning(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	task := NewTask(func() petri.OutcomeKind {
		close(started)
		<-release
		return petri.Success
	})
	go task.Run()
	<-started
	got := task.Status(10 * time.Millisecond)
	if got != petri.QueryTimeout {
		t.Fatalf("Status(10ms) on a slow task = %v, want QUERY_TIMEOUT", got)
	}
	close(release)
}
