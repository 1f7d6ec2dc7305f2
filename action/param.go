package action

import (
	"fmt"
	"math"
	"regexp"

	petri "github.com/bnetrun/bnet"
)

var tokenRefPattern = regexp.MustCompile(`^@token\{(.+)\}$`)

// ConfigParameter is a parameter value drawn from config: either a direct
// literal of type T, or a token-relative reference of the form
// @token{block.path.to.leaf}, per spec §4.9. Get resolves either form
// against a token at dispatch time.
type ConfigParameter[T any] struct {
	literal   T
	isLiteral bool
	path      string
}

// Literal wraps a fixed value, never resolved against a token.
func Literal[T any](v T) ConfigParameter[T] {
	return ConfigParameter[T]{literal: v, isLiteral: true}
}

// TokenRef builds a parameter that resolves path against whatever token it
// is asked to Get against.
func TokenRef[T any](path string) ConfigParameter[T] {
	return ConfigParameter[T]{path: path}
}

// ParseConfigParameter reads raw (typically JSON-decoded config) as either a
// literal T or an @token{...} reference, depending on whether raw is a
// string matching the reference syntax.
func ParseConfigParameter[T any](raw interface{}) (ConfigParameter[T], error) {
	if s, ok := raw.(string); ok {
		if m := tokenRefPattern.FindStringSubmatch(s); m != nil {
			return ConfigParameter[T]{path: m[1]}, nil
		}
	}
	v, ok := raw.(T)
	if !ok {
		return ConfigParameter[T]{}, fmt.Errorf("%w: config value %v is not assignable to the expected type and is not an @token{...} reference", petri.ErrConfigInvalid, raw)
	}
	return ConfigParameter[T]{literal: v, isLiteral: true}, nil
}

// Get resolves the parameter: the literal, or the value at path within
// tok's blocks.
func (c ConfigParameter[T]) Get(tok *petri.Token) (T, error) {
	if c.isLiteral {
		return c.literal, nil
	}
	v, ok := tok.Lookup(c.path)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: token %s has no value at @token{%s}", petri.ErrRuntimeFault, tok.ID(), c.path)
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: token %s value at @token{%s} is %T, not the expected type", petri.ErrRuntimeFault, tok.ID(), c.path, v)
	}
	return typed, nil
}

// ParseString, ParseInt and ParseFloat64 are ParseConfigParameter
// specialized to the JSON-decoded shapes config values actually arrive in
// (JSON numbers decode to float64; ParseInt narrows with a range check).
func ParseString(raw interface{}) (ConfigParameter[string], error) {
	return ParseConfigParameter[string](raw)
}

func ParseFloat64(raw interface{}) (ConfigParameter[float64], error) {
	return ParseConfigParameter[float64](raw)
}

func ParseInt(raw interface{}) (ConfigParameter[int], error) {
	if s, ok := raw.(string); ok && tokenRefPattern.MatchString(s) {
		m := tokenRefPattern.FindStringSubmatch(s)
		return ConfigParameter[int]{path: m[1]}, nil
	}
	f, ok := raw.(float64)
	if !ok {
		return ConfigParameter[int]{}, fmt.Errorf("%w: config value %v is not a number and is not an @token{...} reference", petri.ErrConfigInvalid, raw)
	}
	if f < math.MinInt || f >= math.MaxInt+1 {
		return ConfigParameter[int]{}, fmt.Errorf("%w: config value %v is out of range for int", petri.ErrConfigInvalid, raw)
	}
	return ConfigParameter[int]{literal: int(f), isLiteral: true}, nil
}
