package demo

import (
	"testing"
	"time"

	"github.com/arung-agamani/streamgraph/internal/core/component"
	"github.com/arung-agamani/streamgraph/internal/core/graph"
	"github.com/arung-agamani/streamgraph/internal/core/registry"
)

func TestClockStringifyCollectorPipeline(t *testing.T) {
	reg := registry.New()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}
	g := graph.New(reg, nil)

	clock, err := g.CreateNode("clock", "", map[string]any{"interval_ms": 10})
	if err != nil {
		t.Fatal(err)
	}
	str, err := g.CreateNode("stringify", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	coll, err := g.CreateNode("collector", "", nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := g.CreateEdge(clock.ID, "ticks", str.ID, "in"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.CreateEdge(str.ID, "out", coll.ID, "in"); err != nil {
		t.Fatal(err)
	}

	g.StartAll()
	defer g.StopAll()

	deadline := time.Now().Add(2 * time.Second)
	collector := coll.Component.(*Collector)
	for time.Now().Before(deadline) {
		if len(collector.Values()) >= 3 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	values := collector.Values()
	if len(values) < 3 {
		t.Fatalf("expected at least 3 collected values, got %v", values)
	}
}

func TestCreateEdgeRejectsTypeMismatch(t *testing.T) {
	reg := registry.New()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}
	g := graph.New(reg, nil)

	clock, _ := g.CreateNode("clock", "", nil)
	coll, _ := g.CreateNode("collector", "", nil)

	if _, err := g.CreateEdge(clock.ID, "ticks", coll.ID, "in"); err == nil {
		t.Fatal("expected type mismatch error wiring int64 ticks into a string sink")
	}
}

func TestCreateNodeUnknownClass(t *testing.T) {
	reg := registry.New()
	g := graph.New(reg, nil)
	if _, err := g.CreateNode("nonexistent", "", nil); err == nil {
		t.Fatal("expected error for unknown component class")
	}
}

func TestCreateNodeDuplicateIDReturnsExisting(t *testing.T) {
	reg := registry.New()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}
	g := graph.New(reg, nil)

	first, err := g.CreateNode("clock", "n1", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.CreateNode("clock", "n1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first != second || len(g.ListNodes()) != 1 {
		t.Fatalf("expected the existing node to be returned, got %p and %p with %d nodes", first, second, len(g.ListNodes()))
	}
}

func TestDeleteEdgeStopsBothEndpoints(t *testing.T) {
	reg := registry.New()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}
	g := graph.New(reg, nil)

	clock, _ := g.CreateNode("clock", "", map[string]any{"interval_ms": 10})
	str, _ := g.CreateNode("stringify", "", nil)
	if _, err := g.CreateEdge(clock.ID, "ticks", str.ID, "in"); err != nil {
		t.Fatal(err)
	}
	g.StartAll()

	if err := g.DeleteEdge(clock.ID, "ticks", str.ID, "in"); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if clock.Component.Status() == component.StatusStopped && str.Component.Status() == component.StatusStopped {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected both endpoints stopped, got clock=%s stringify=%s", clock.Component.Status(), str.Component.Status())
}
