package action

import (
	"errors"
	"testing"

	petri "github.com/bnetrun/bnet"
)

type nopImpl struct{}

func (nopImpl) Callable(*petri.Token) petri.OutcomeKind { return petri.Success }

func TestRegisterAndBuild(t *testing.T) {
	Register("test.nop.registry", func(params map[string]interface{}) (ActionImpl, error) {
		return nopImpl{}, nil
	})

	impl, err := Build("test.nop.registry", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := impl.Callable(petri.NewToken()); got != petri.Success {
		t.Fatalf("Callable = %v, want SUCCESS", got)
	}
}

func TestBuildUnknownTypeIsConfigInvalid(t *testing.T) {
	_, err := Build("test.nop.does-not-exist", nil)
	if !errors.Is(err, petri.ErrConfigInvalid) {
		t.Fatalf("Build unknown type: got %v, want ErrConfigInvalid", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("test.nop.dup", func(params map[string]interface{}) (ActionImpl, error) {
		return nopImpl{}, nil
	})
	defer func() {
		if recover() == nil {
			t.Fatal("expected Register to panic on duplicate name")
		}
	}()
	Register("test.nop.dup", func(params map[string]interface{}) (ActionImpl, error) {
		return nopImpl{}, nil
	})
}
