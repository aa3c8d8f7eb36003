package demo

import (
	"context"
	"fmt"

	"github.com/arung-agamani/streamgraph/internal/core/channel"
	"github.com/arung-agamani/streamgraph/internal/core/component"
	"github.com/arung-agamani/streamgraph/internal/core/types"
)

// Stringify converts each incoming int64 to its decimal rendering. It
// has one input and one output, making it a conduit.
type Stringify struct {
	*component.Base
	out *channel.Channel[string]
}

func stringifyInputTypes() component.SlotSignature {
	return component.SlotSignature{{Name: "in", Type: types.Int()}}
}

func stringifyOutputTypes() component.SlotSignature {
	return component.SlotSignature{{Name: "out", Type: types.Str()}}
}

func newStringify(init map[string]any) (component.Component, error) {
	out := channel.New[string]("strings", types.Str())
	s := &Stringify{out: out}
	s.Base = component.NewBase("stringify", map[string]channel.Typed{"out": out}, s.run)
	return s, nil
}

func (s *Stringify) run(ctx context.Context, inputs map[string]channel.Typed) error {
	typed, ok := inputs["in"]
	if !ok {
		return nil
	}
	in, ok := typed.(*channel.Channel[int64])
	if !ok {
		return fmt.Errorf("stringify: input slot \"in\" bound to unexpected channel type %T", typed)
	}
	sub := in.Subscribe()
	defer sub.Unsubscribe()

	for {
		v, ok := sub.Next(s.Base)
		if !ok {
			return nil
		}
		s.out.Publish(fmt.Sprintf("%d", v))
	}
}

// StringifyClass is the registry entry for Stringify.
var StringifyClass = component.Class{
	Name:        "stringify",
	InputTypes:  stringifyInputTypes,
	OutputTypes: stringifyOutputTypes,
	InitTypes:   func() []component.InitParam { return nil },
	New:         newStringify,
}
