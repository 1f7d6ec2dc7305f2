package config

import (
	"errors"
	"testing"

	petri "github.com/bnetrun/bnet"
	"github.com/bnetrun/bnet/action"
)

func init() {
	action.Register("test.config.nop", func(params map[string]interface{}) (action.ActionImpl, error) {
		return nopImpl{}, nil
	})
}

type nopImpl struct{}

func (nopImpl) Callable(*petri.Token) petri.OutcomeKind { return petri.Success }

const validConfig = `{
  "petri_net": {
    "places": [ { "place_id": "A" }, { "place_id": "B" }, { "place_id": "C" } ],
    "transitions": [
      {
        "transition_id": "T1",
        "transition_type": "AUTO",
        "transition_arcs": [
          { "place_id": "A", "type": "INPUT" },
          { "place_id": "B", "type": "OUTPUT" },
          { "place_id": "C", "type": "OUTPUT", "token_content_filter": "^keep$" }
        ]
      }
    ]
  },
  "controller": {
    "thread_poll_workers": 2,
    "epoch_period_ms": 50,
    "actions": [
      { "place_id": "A", "type": "test.config.nop", "params": {} }
    ]
  }
}`

func TestParseValidConfig(t *testing.T) {
	doc, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.PetriNet.Places) != 3 {
		t.Fatalf("places = %d, want 3", len(doc.PetriNet.Places))
	}
	if doc.Controller.EpochPeriodMs != 50 {
		t.Fatalf("epoch_period_ms = %d, want 50", doc.Controller.EpochPeriodMs)
	}
}

func TestParseRejectsUnknownPlaceReference(t *testing.T) {
	bad := `{
      "petri_net": {
        "places": [ { "place_id": "A" } ],
        "transitions": [
          { "transition_id": "T1", "transition_type": "AUTO",
            "transition_arcs": [
              { "place_id": "A", "type": "INPUT" },
              { "place_id": "ghost", "type": "OUTPUT" }
            ]
          }
        ]
      },
      "controller": { "thread_poll_workers": 1, "epoch_period_ms": 10, "actions": [] }
    }`
	_, err := Parse([]byte(bad))
	if !errors.Is(err, petri.ErrConfigInvalid) {
		t.Fatalf("Parse unknown place: got %v, want ErrConfigInvalid", err)
	}
}

func TestParseRejectsUnregisteredActionType(t *testing.T) {
	bad := `{
      "petri_net": { "places": [ { "place_id": "A" } ], "transitions": [] },
      "controller": {
        "thread_poll_workers": 1, "epoch_period_ms": 10,
        "actions": [ { "place_id": "A", "type": "does.not.exist" } ]
      }
    }`
	_, err := Parse([]byte(bad))
	if !errors.Is(err, petri.ErrConfigInvalid) {
		t.Fatalf("Parse unregistered action type: got %v, want ErrConfigInvalid", err)
	}
}

func TestParseDefaultsMissingTransitionTypeToAuto(t *testing.T) {
	doc := `{
      "petri_net": {
        "places": [ { "place_id": "A" }, { "place_id": "B" } ],
        "transitions": [
          { "transition_id": "T1",
            "transition_arcs": [
              { "place_id": "A", "type": "INPUT" },
              { "place_id": "B", "type": "OUTPUT" }
            ]
          }
        ]
      },
      "controller": { "thread_poll_workers": 1, "epoch_period_ms": 10, "actions": [] }
    }`
	parsed, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.PetriNet.Transitions[0].TransitionType != "AUTO" {
		t.Fatalf("transition_type defaulted to %q, want AUTO", parsed.PetriNet.Transitions[0].TransitionType)
	}
}

func TestBuildConstructsNet(t *testing.T) {
	doc, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	built, err := Build(doc, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer built.Pool.Shutdown()

	if built.EpochPeriodMs != 50 {
		t.Fatalf("EpochPeriodMs = %d, want 50", built.EpochPeriodMs)
	}
	if _, err := built.Net.InsertToken("A", nil); err != nil {
		t.Fatalf("InsertToken: %v", err)
	}
	marking := built.Net.Marking()
	if marking["A"] != 1 {
		t.Fatalf("marking[A] = %d, want 1", marking["A"])
	}
}
