package action

import (
	"errors"
	"testing"

	petri "github.com/bnetrun/bnet"
)

func TestConfigParameterLiteral(t *testing.T) {
	p := Literal(42)
	tok := petri.NewToken()
	got, err := p.Get(tok)
	if err != nil || got != 42 {
		t.Fatalf("Get literal = (%v, %v), want (42, nil)", got, err)
	}
}

func TestConfigParameterTokenRef(t *testing.T) {
	tok := petri.NewToken()
	_ = tok.AddBlock("recipe", petri.Block{"temp_c": map[string]interface{}{"target": 72.5}})

	p, err := ParseFloat64("@token{recipe.temp_c.target}")
	if err != nil {
		t.Fatalf("ParseFloat64: %v", err)
	}
	got, err := p.Get(tok)
	if err != nil || got != 72.5 {
		t.Fatalf("Get token ref = (%v, %v), want (72.5, nil)", got, err)
	}
}

func TestConfigParameterTokenRefMissingPath(t *testing.T) {
	tok := petri.NewToken()
	p := TokenRef[string]("recipe.missing")
	_, err := p.Get(tok)
	if !errors.Is(err, petri.ErrRuntimeFault) {
		t.Fatalf("Get on missing path: got %v, want ErrRuntimeFault", err)
	}
}

func TestParseConfigParameterRejectsWrongType(t *testing.T) {
	if _, err := ParseString(42); !errors.Is(err, petri.ErrConfigInvalid) {
		t.Fatalf("ParseString(42): got %v, want ErrConfigInvalid", err)
	}
}

func TestParseIntFromJSONNumber(t *testing.T) {
	p, err := ParseInt(float64(7))
	if err != nil {
		t.Fatalf("ParseInt: %v", err)
	}
	got, err := p.Get(petri.NewToken())
	if err != nil || got != 7 {
		t.Fatalf("Get = (%v, %v), want (7, nil)", got, err)
	}
}
