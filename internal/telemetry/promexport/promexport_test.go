package promexport

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/arung-agamani/streamgraph/internal/core/graph"
	"github.com/arung-agamani/streamgraph/internal/core/registry"
	"github.com/arung-agamani/streamgraph/internal/demo"
)

func TestCollectorGatherWithoutNodes(t *testing.T) {
	reg := registry.New()
	if err := demo.Register(reg); err != nil {
		t.Fatal(err)
	}
	g := graph.New(reg, nil)
	c := New(g)

	if count := testutil.CollectAndCount(c); count != 0 {
		t.Fatalf("expected no metrics with an empty graph, got %d", count)
	}
}

func TestCollectorExportsComponentUp(t *testing.T) {
	reg := registry.New()
	if err := demo.Register(reg); err != nil {
		t.Fatal(err)
	}
	g := graph.New(reg, nil)
	if _, err := g.CreateNode("clock", "n1", nil); err != nil {
		t.Fatal(err)
	}

	c := New(g)
	count := testutil.CollectAndCount(c)
	if count == 0 {
		t.Fatal("expected at least one metric once a node exists")
	}
}
