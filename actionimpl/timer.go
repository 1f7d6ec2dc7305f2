// Package actionimpl provides illustrative ActionImpl implementations,
// registered with package action at init() the same way original_source
// registers its ACTION_TYPE implementations.
package actionimpl

import (
	"fmt"
	"math/rand/v2"
	"time"

	petri "github.com/bnetrun/bnet"
	"github.com/bnetrun/bnet/action"
	"github.com/shopspring/decimal"
)

func init() {
	action.Register("TimerAction", newTimerAction)
}

// TimerAction holds a token for duration_ms, then resolves to SUCCESS,
// FAILURE or ERROR according to the configured failure_rate/error_rate,
// grounded on original_source's action_impl/TimerAction.hpp. Unlike the
// original's poll-once-per-invocation callable, Callable here blocks for
// the full duration: this is what lets a single Task span many epochs
// without ever being redispatched (spec §4.4's "idempotent tokens ... are
// not redispatched" guarantee), rather than returning IN_PROGRESS from a
// task that can only ever run once.
type TimerAction struct {
	durationMs  action.ConfigParameter[int]
	failureRate decimal.Decimal
	errorRate   decimal.Decimal
	successRate decimal.Decimal
}

func newTimerAction(params map[string]interface{}) (action.ActionImpl, error) {
	raw, ok := params["duration_ms"]
	if !ok {
		return nil, fmt.Errorf("%w: TimerAction requires duration_ms", petri.ErrConfigInvalid)
	}
	durationMs, err := action.ParseInt(raw)
	if err != nil {
		return nil, err
	}

	failureRate := decimalParam(params, "failure_rate")
	errorRate := decimalParam(params, "error_rate")
	successRate := decimal.NewFromInt(1).Sub(failureRate).Sub(errorRate)
	if successRate.IsNegative() {
		return nil, fmt.Errorf("%w: TimerAction failure_rate + error_rate exceeds 1", petri.ErrConfigInvalid)
	}

	return &TimerAction{
		durationMs:  durationMs,
		failureRate: failureRate,
		errorRate:   errorRate,
		successRate: successRate,
	}, nil
}

func decimalParam(params map[string]interface{}, key string) decimal.Decimal {
	v, ok := params[key]
	if !ok {
		return decimal.Zero
	}
	f, ok := v.(float64)
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func (t *TimerAction) Callable(tok *petri.Token) petri.OutcomeKind {
	durationMs, err := t.durationMs.Get(tok)
	if err != nil {
		return petri.ActionFailed
	}

	time.Sleep(time.Duration(durationMs) * time.Millisecond)

	return t.sample()
}

// sample picks SUCCESS/FAILURE/ERROR weighted by the configured rates. The
// rates are literal config numbers (not token-resolved); the success rate is
// derived as 1 - failure_rate - error_rate in decimal.Decimal, so the three
// rates sum to exactly 1 regardless of float rounding.
func (t *TimerAction) sample() petri.OutcomeKind {
	r := decimal.NewFromFloat(rand.Float64())
	switch {
	case r.LessThan(t.successRate):
		return petri.Success
	case r.LessThan(t.successRate.Add(t.failureRate)):
		return petri.Failure
	default:
		return petri.ActionFailed
	}
}
