// Package demo provides small, dependency-free components that exercise
// the registry, graph, and channel machinery end to end: a source, a
// conduit, and a sink. They stand in for the heavier ML-backed
// components a real deployment would register in their place.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/arung-agamani/streamgraph/internal/core/channel"
	"github.com/arung-agamani/streamgraph/internal/core/component"
	"github.com/arung-agamani/streamgraph/internal/core/types"
)

// Clock emits a monotonically increasing tick count on a fixed interval.
// It has no inputs, making it a source.
type Clock struct {
	*component.Base
	out *channel.Channel[int64]
}

func clockInitTypes() []component.InitParam {
	return []component.InitParam{{Name: "interval_ms", Type: types.Int(), Required: false}}
}

func clockOutputTypes() component.SlotSignature {
	return component.SlotSignature{{Name: "ticks", Type: types.Int()}}
}

func newClock(init map[string]any) (component.Component, error) {
	interval := 1000 * time.Millisecond
	if raw, ok := init["interval_ms"]; ok {
		ms, ok := toInt(raw)
		if !ok {
			return nil, fmt.Errorf("interval_ms must be an integer, got %T", raw)
		}
		if ms <= 0 {
			return nil, fmt.Errorf("interval_ms must be positive")
		}
		interval = time.Duration(ms) * time.Millisecond
	}

	out := channel.New[int64]("ticks", types.Int())
	c := &Clock{out: out}
	c.Base = component.NewBase("clock", map[string]channel.Typed{"ticks": out}, func(ctx context.Context, inputs map[string]channel.Typed) error {
		return c.run(ctx, interval)
	})
	return c, nil
}

func (c *Clock) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var n int64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n++
			c.out.Publish(n)
		}
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// ClockClass is the registry entry for Clock.
var ClockClass = component.Class{
	Name:        "clock",
	InputTypes:  func() component.SlotSignature { return nil },
	OutputTypes: clockOutputTypes,
	InitTypes:   clockInitTypes,
	New:         newClock,
}
