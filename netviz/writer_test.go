package netviz

import (
	"bytes"
	"testing"

	graphviz "github.com/goccy/go-graphviz"
	"go.uber.org/zap"

	petri "github.com/bnetrun/bnet"
)

func buildSampleNet(t *testing.T) *petri.Net {
	t.Helper()
	a := petri.NewPlace("A")
	b := petri.NewPlace("B")
	tr := &petri.Transition{
		ID:      "T1",
		Mode:    petri.Auto,
		Inputs:  []*petri.Arc{petri.NewInputArc("A", nil)},
		Outputs: []*petri.Arc{petri.NewOutputArc("B", nil)},
	}
	net, err := petri.New("net", []*petri.Place{a, b}, []*petri.Transition{tr}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return net
}

func TestFlushRendersWithoutError(t *testing.T) {
	net := buildSampleNet(t)
	w := New(&Config{Font: Helvetica, RankDir: TopToBottom})

	var buf bytes.Buffer
	if err := w.Flush(&buf, net, graphviz.XDOT); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty rendered output")
	}
}

func TestFlushDefaultsConfig(t *testing.T) {
	net := buildSampleNet(t)
	w := New(nil)

	var buf bytes.Buffer
	if err := w.Flush(&buf, net, graphviz.XDOT); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty rendered output")
	}
}
