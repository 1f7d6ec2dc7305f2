package actionimpl

import (
	"testing"
	"time"

	petri "github.com/bnetrun/bnet"
	"github.com/bnetrun/bnet/action"
)

func buildTimer(t *testing.T, params map[string]interface{}) action.ActionImpl {
	t.Helper()
	impl, err := newTimerAction(params)
	if err != nil {
		t.Fatalf("newTimerAction: %v", err)
	}
	return impl
}

func TestTimerActionAlwaysSucceedsWithZeroFailureRates(t *testing.T) {
	impl := buildTimer(t, map[string]interface{}{"duration_ms": float64(10)})
	tok := petri.NewToken()
	start := time.Now()
	outcome := impl.Callable(tok)
	if outcome != petri.Success {
		t.Fatalf("Callable = %v, want SUCCESS", outcome)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatal("Callable returned before the configured duration elapsed")
	}
}

func TestTimerActionRejectsMissingDuration(t *testing.T) {
	if _, err := newTimerAction(map[string]interface{}{}); err == nil {
		t.Fatal("expected an error when duration_ms is missing")
	}
}

func TestTimerActionRejectsOverAllocatedRates(t *testing.T) {
	_, err := newTimerAction(map[string]interface{}{
		"duration_ms":  float64(1),
		"failure_rate": float64(0.6),
		"error_rate":   float64(0.6),
	})
	if err == nil {
		t.Fatal("expected an error when failure_rate + error_rate exceeds 1")
	}
}

func TestTimerActionAlwaysFailsWithFailureRateOne(t *testing.T) {
	impl := buildTimer(t, map[string]interface{}{
		"duration_ms":  float64(1),
		"failure_rate": float64(1),
	})
	tok := petri.NewToken()
	if outcome := impl.Callable(tok); outcome != petri.Failure {
		t.Fatalf("Callable = %v, want FAILURE", outcome)
	}
}
