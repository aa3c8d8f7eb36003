package registry

import (
	"testing"

	"github.com/arung-agamani/streamgraph/internal/core/component"
)

func stubClass(name string) component.Class {
	return component.Class{
		Name:        name,
		InputTypes:  func() component.SlotSignature { return nil },
		OutputTypes: func() component.SlotSignature { return nil },
		InitTypes:   func() []component.InitParam { return nil },
		New: func(init map[string]any) (component.Component, error) {
			return nil, nil
		},
	}
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	if err := r.Register(stubClass("a")); err != nil {
		t.Fatal(err)
	}
	c, ok := r.Lookup("a")
	if !ok || c.Name != "a" {
		t.Fatalf("expected to find class a, got %+v ok=%v", c, ok)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Fatal("expected missing lookup to fail")
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := New()
	if err := r.Register(stubClass("a")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(stubClass("a")); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestListIsSorted(t *testing.T) {
	r := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(stubClass(name)); err != nil {
			t.Fatal(err)
		}
	}
	got := r.List()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("expected %d classes, got %d", len(want), len(got))
	}
	for i, c := range got {
		if c.Name != want[i] {
			t.Fatalf("expected sorted order %v, got %s at index %d", want, c.Name, i)
		}
	}
}
