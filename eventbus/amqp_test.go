package eventbus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bnetrun/bnet/scheduler"
)

func TestRoutingKeyJoinsNetAndTransition(t *testing.T) {
	ev := scheduler.Event{NetID: "net", TransitionID: "T1", FiredAt: time.Now()}
	if got, want := routingKey(ev), "net.T1"; got != want {
		t.Fatalf("routingKey = %q, want %q", got, want)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	fired := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)
	ev := scheduler.Event{NetID: "net", TransitionID: "T1", FiredAt: fired}

	body, err := encode(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded eventBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.NetID != "net" || decoded.TransitionID != "T1" {
		t.Fatalf("decoded = %+v, want net_id=net transition_id=T1", decoded)
	}
	if decoded.FiredAt == "" {
		t.Fatal("expected a non-empty fired_at timestamp")
	}
}
