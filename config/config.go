// Package config loads and validates the JSON net/controller configuration
// described in spec §6.1 and builds the runtime objects (petri.Net, wired
// action.Action dispatchers) it describes.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	petri "github.com/bnetrun/bnet"
	"github.com/bnetrun/bnet/action"
	"go.uber.org/zap"
)

// Document is the decoded, not-yet-validated shape of a config file.
type Document struct {
	PetriNet   PetriNetConfig `json:"petri_net"`
	Controller Controller     `json:"controller"`
}

type PetriNetConfig struct {
	Places      []PlaceConfig      `json:"places"`
	Transitions []TransitionConfig `json:"transitions"`
}

type PlaceConfig struct {
	PlaceID string `json:"place_id"`
}

type TransitionConfig struct {
	TransitionID   string      `json:"transition_id"`
	TransitionType string      `json:"transition_type"`
	Arcs           []ArcConfig `json:"transition_arcs"`
}

type ArcConfig struct {
	PlaceID            string   `json:"place_id"`
	Type               string   `json:"type"`
	ActionResultFilter []string `json:"action_result_filter,omitempty"`
	TokenContentFilter string   `json:"token_content_filter,omitempty"`
}

type Controller struct {
	ThreadPoolWorkers int            `json:"thread_poll_workers"`
	EpochPeriodMs     int            `json:"epoch_period_ms"`
	Actions           []ActionConfig `json:"actions"`
}

type ActionConfig struct {
	PlaceID string                 `json:"place_id"`
	Type    string                 `json:"type"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Load reads path, decodes it as JSON, and runs the registered validators
// over it before returning. A read or decode failure is returned on its own
// as a ConfigInvalid error; otherwise every validator failure is aggregated
// into a single ConfigInvalid error, per NetConfig::validateConfig.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", petri.ErrConfigInvalid, path, err)
	}
	return Parse(data)
}

// Parse decodes and validates raw JSON config bytes. The validators run with
// a no-op logger, so the Warn for a missing transition_type (defaulted to
// AUTO) is not emitted anywhere.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding config: %v", petri.ErrConfigInvalid, err)
	}
	if errs := validate(&doc, zap.NewNop()); len(errs) > 0 {
		return nil, aggregateErrors(errs)
	}
	return &doc, nil
}

func aggregateErrors(errs []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation error(s) found:\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(&b, "\t%s\n", e)
	}
	return fmt.Errorf("%w: %s", petri.ErrConfigInvalid, b.String())
}

// validate runs every structural rule from spec §6.1, collecting all
// violations rather than stopping at the first (mirrors
// NetConfig::validateConfig). Soft defaults (missing transition_type) are
// logged at Warn through log and do not contribute to the returned errors.
func validate(doc *Document, log *zap.Logger) []string {
	var errs []string

	placeIDs := map[string]bool{}
	for _, p := range doc.PetriNet.Places {
		if p.PlaceID == "" {
			errs = append(errs, "place entry missing place_id")
			continue
		}
		if placeIDs[p.PlaceID] {
			errs = append(errs, fmt.Sprintf("duplicate place_id %q", p.PlaceID))
		}
		placeIDs[p.PlaceID] = true
	}

	transitionIDs := map[string]bool{}
	for i := range doc.PetriNet.Transitions {
		tr := &doc.PetriNet.Transitions[i]
		if tr.TransitionID == "" {
			errs = append(errs, "transition entry missing transition_id")
			continue
		}
		if transitionIDs[tr.TransitionID] {
			errs = append(errs, fmt.Sprintf("duplicate transition_id %q", tr.TransitionID))
		}
		transitionIDs[tr.TransitionID] = true

		if tr.TransitionType == "" {
			log.Warn("transition_type missing, defaulting to AUTO", zap.String("transition_id", tr.TransitionID))
			tr.TransitionType = "AUTO"
		} else if tr.TransitionType != "AUTO" && tr.TransitionType != "MANUAL" {
			errs = append(errs, fmt.Sprintf("transition %q has unknown transition_type %q", tr.TransitionID, tr.TransitionType))
		}

		hasInput := false
		for _, a := range tr.Arcs {
			if !placeIDs[a.PlaceID] {
				errs = append(errs, fmt.Sprintf("transition %q arc references unknown place %q", tr.TransitionID, a.PlaceID))
			}
			switch a.Type {
			case "INPUT":
				hasInput = true
				if a.TokenContentFilter != "" {
					errs = append(errs, fmt.Sprintf("transition %q arc on %q: token_content_filter is OUTPUT-only", tr.TransitionID, a.PlaceID))
				}
				if _, err := petri.ParseOutcomeSet(a.ActionResultFilter); err != nil {
					errs = append(errs, fmt.Sprintf("transition %q arc on %q: %v", tr.TransitionID, a.PlaceID, err))
				}
			case "OUTPUT":
				if len(a.ActionResultFilter) != 0 {
					errs = append(errs, fmt.Sprintf("transition %q arc on %q: action_result_filter is INPUT-only", tr.TransitionID, a.PlaceID))
				}
				if a.TokenContentFilter != "" {
					if _, err := regexp.Compile(a.TokenContentFilter); err != nil {
						errs = append(errs, fmt.Sprintf("transition %q arc on %q: invalid token_content_filter: %v", tr.TransitionID, a.PlaceID, err))
					}
				}
			default:
				errs = append(errs, fmt.Sprintf("transition %q arc on %q has unknown type %q", tr.TransitionID, a.PlaceID, a.Type))
			}
		}
		if !hasInput {
			errs = append(errs, fmt.Sprintf("transition %q has no INPUT arcs", tr.TransitionID))
		}
	}

	for _, a := range doc.Controller.Actions {
		if !placeIDs[a.PlaceID] {
			errs = append(errs, fmt.Sprintf("action entry references unknown place %q", a.PlaceID))
		}
		if !action.Registered(a.Type) {
			errs = append(errs, fmt.Sprintf("action entry on place %q references unregistered type %q", a.PlaceID, a.Type))
		}
	}

	return errs
}

// Built is the constructed runtime produced by Build: the net plus the
// worker pool backing its active places, owned together so callers can
// shut both down.
type Built struct {
	Net        *petri.Net
	Pool       *action.WorkerPool
	EpochPeriodMs int
}

// Build constructs a *petri.Net and its action dispatchers from a validated
// Document. logger may be nil.
func Build(doc *Document, logger *zap.Logger) (*Built, error) {
	workers := doc.Controller.ThreadPoolWorkers
	pool := action.NewWorkerPool(workers)

	places := make([]*petri.Place, 0, len(doc.PetriNet.Places))
	byID := make(map[string]*petri.Place, len(doc.PetriNet.Places))
	for _, p := range doc.PetriNet.Places {
		place := petri.NewPlace(p.PlaceID)
		places = append(places, place)
		byID[p.PlaceID] = place
	}

	for _, a := range doc.Controller.Actions {
		impl, err := action.Build(a.Type, a.Params)
		if err != nil {
			return nil, err
		}
		byID[a.PlaceID].SetDispatcher(action.NewAction(impl, pool))
	}

	transitions := make([]*petri.Transition, 0, len(doc.PetriNet.Transitions))
	for _, tr := range doc.PetriNet.Transitions {
		mode := petri.Auto
		if tr.TransitionType == "MANUAL" {
			mode = petri.Manual
		}
		t := &petri.Transition{ID: tr.TransitionID, Mode: mode}
		for _, a := range tr.Arcs {
			switch a.Type {
			case "INPUT":
				filter, err := petri.ParseOutcomeSet(a.ActionResultFilter)
				if err != nil {
					return nil, err
				}
				t.Inputs = append(t.Inputs, petri.NewInputArc(a.PlaceID, filter))
			case "OUTPUT":
				var re *regexp.Regexp
				if a.TokenContentFilter != "" {
					compiled, err := regexp.Compile(a.TokenContentFilter)
					if err != nil {
						return nil, fmt.Errorf("%w: %v", petri.ErrConfigInvalid, err)
					}
					re = compiled
				}
				t.Outputs = append(t.Outputs, petri.NewOutputArc(a.PlaceID, re))
			}
		}
		transitions = append(transitions, t)
	}

	net, err := petri.New("net", places, transitions, logger)
	if err != nil {
		return nil, err
	}

	return &Built{Net: net, Pool: pool, EpochPeriodMs: doc.Controller.EpochPeriodMs}, nil
}
