package demo

import (
	"github.com/arung-agamani/streamgraph/internal/core/component"
	"github.com/arung-agamani/streamgraph/internal/core/registry"
)

func allClasses() []component.Class {
	return []component.Class{ClockClass, StringifyClass, CollectorClass}
}

// Register adds every demo component class to reg. Intended to be
// called once at process startup.
func Register(reg *registry.Registry) error {
	for _, c := range allClasses() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
