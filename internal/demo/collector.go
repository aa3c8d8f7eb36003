package demo

import (
	"context"
	"fmt"
	"sync"

	"github.com/arung-agamani/streamgraph/internal/core/channel"
	"github.com/arung-agamani/streamgraph/internal/core/component"
	"github.com/arung-agamani/streamgraph/internal/core/types"
)

// Collector accumulates every string it receives. It has no outputs,
// making it a sink. Values is safe to call concurrently with the
// component running.
type Collector struct {
	*component.Base

	mu     sync.Mutex
	values []string
}

func collectorInputTypes() component.SlotSignature {
	return component.SlotSignature{{Name: "in", Type: types.Str()}}
}

func newCollector(init map[string]any) (component.Component, error) {
	c := &Collector{}
	c.Base = component.NewBase("collector", map[string]channel.Typed{}, c.run)
	return c, nil
}

func (c *Collector) run(ctx context.Context, inputs map[string]channel.Typed) error {
	typed, ok := inputs["in"]
	if !ok {
		return nil
	}
	in, ok := typed.(*channel.Channel[string])
	if !ok {
		return fmt.Errorf("collector: input slot \"in\" bound to unexpected channel type %T", typed)
	}
	sub := in.Subscribe()
	defer sub.Unsubscribe()

	for {
		v, ok := sub.Next(c.Base)
		if !ok {
			return nil
		}
		c.mu.Lock()
		c.values = append(c.values, v)
		c.mu.Unlock()
	}
}

// Values returns a copy of everything collected so far.
func (c *Collector) Values() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.values))
	copy(out, c.values)
	return out
}

// CollectorClass is the registry entry for Collector.
var CollectorClass = component.Class{
	Name:        "collector",
	InputTypes:  collectorInputTypes,
	OutputTypes: func() component.SlotSignature { return nil },
	InitTypes:   func() []component.InitParam { return nil },
	New:         newCollector,
}
