// Package channel implements the broadcast buffer that carries values
// between component instances: many subscribers, each with its own
// cursor, backed by a single growing-then-trimmed slice.
package channel

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arung-agamani/streamgraph/internal/core/types"
)

// Cancellable is the only thing Channel needs from whatever owns a
// subscription: a channel that closes when that owner wants to stop
// waiting. A *component.Base satisfies this directly, and so does a plain
// context.Context, since both already declare Done() <-chan struct{}.
type Cancellable interface {
	Done() <-chan struct{}
}

// Sizer lets a payload type report its own byte footprint for telemetry.
// []byte and string payloads are measured by length; other types that
// don't implement it fall back to a fixed per-item estimate.
type Sizer interface {
	Size() int
}

// SubscriberSnapshot is the delta-since-last-snapshot view of one
// subscriber's consumption.
type SubscriberSnapshot struct {
	Lag           int64
	MessagesDelta int64
	BytesDelta    int64
}

// Snapshot is the point-in-time, delta-since-last-call telemetry for a
// channel and all of its subscribers.
type Snapshot struct {
	Name            string
	ElementType     types.Descriptor
	MessagesDelta   int64
	BytesDelta      int64
	LastPublishTime time.Time
	BufferDepth     int
	Subscribers     map[int64]SubscriberSnapshot
}

// subscriber is the server-side cursor state for one registered reader.
type subscriber struct {
	cursor    int64
	msgDelta  int64
	byteDelta int64
}

// Typed is the type-erased view of a *Channel[T] used wherever the graph
// runtime must move channels between components without knowing T at
// compile time: wiring edges, collecting telemetry, rendering discovery
// metadata. Concrete components recover the static type with a single
// type assertion back to *Channel[T] at the one point where they bind
// their declared inputs.
type Typed interface {
	Name() string
	ElementType() types.Descriptor
	Snapshot() Snapshot
}

const estimatedItemSize = 64

func sizeOf[T any](item T) int {
	switch v := any(item).(type) {
	case []byte:
		return len(v)
	case string:
		return len(v)
	case Sizer:
		return v.Size()
	default:
		return estimatedItemSize
	}
}

// Channel is a broadcast buffer over values of type T. Publish never
// blocks on subscribers; each subscriber advances an independent cursor
// over a shared backing slice that is trimmed once every cursor has moved
// past its head.
type Channel[T any] struct {
	mu sync.Mutex

	name        string
	elementType types.Descriptor

	items []T
	base  int64 // absolute sequence number of items[0]

	subs    map[int64]*subscriber
	nextSub int64

	wake chan struct{} // closed and replaced on every publish

	msgDelta    int64
	byteDelta   int64
	lastPublish time.Time
}

var anonChannelSeq atomic.Int64

// New creates a channel carrying values of the given element type. An
// empty name is replaced with a process-unique generated one.
func New[T any](name string, elementType types.Descriptor) *Channel[T] {
	if name == "" {
		name = "channel-" + strconv.FormatInt(anonChannelSeq.Add(1), 10)
	}
	return &Channel[T]{
		name:        name,
		elementType: elementType,
		subs:        make(map[int64]*subscriber),
		wake:        make(chan struct{}),
	}
}

func (c *Channel[T]) Name() string                 { return c.name }
func (c *Channel[T]) ElementType() types.Descriptor { return c.elementType }

// Publish appends an item for every current subscriber to eventually
// observe. With no subscribers the item is dropped without touching any
// counters: nothing is retained for a consumer that will never arrive.
func (c *Channel[T]) Publish(item T) {
	c.mu.Lock()
	if len(c.subs) == 0 {
		c.mu.Unlock()
		return
	}
	c.items = append(c.items, item)
	c.msgDelta++
	c.byteDelta += int64(sizeOf(item))
	c.lastPublish = time.Now()
	wake := c.wake
	c.wake = make(chan struct{})
	c.mu.Unlock()
	close(wake)
}

// Subscription is one reader's registered cursor into a Channel.
type Subscription[T any] struct {
	ch *Channel[T]
	id int64
}

// Subscribe registers a new reader positioned at the current tail: it
// only observes items published after this call.
func (c *Channel[T]) Subscribe() *Subscription[T] {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = &subscriber{cursor: c.base + int64(len(c.items))}
	c.mu.Unlock()
	return &Subscription[T]{ch: c, id: id}
}

// Next blocks until an item is available, the subscription is torn down
// with Unsubscribe, or cancel's Done channel closes. ok is false in the
// latter two cases; a cancelled Next may be called again, but an
// unsubscribed one always returns immediately with ok false.
func (s *Subscription[T]) Next(cancel Cancellable) (item T, ok bool) {
	c := s.ch
	for {
		c.mu.Lock()
		sub, present := c.subs[s.id]
		if !present {
			c.mu.Unlock()
			var zero T
			return zero, false
		}
		tail := c.base + int64(len(c.items))
		if sub.cursor < tail {
			v := c.items[sub.cursor-c.base]
			sub.cursor++
			sub.msgDelta++
			sub.byteDelta += int64(sizeOf(v))
			c.mu.Unlock()
			c.gc()
			return v, true
		}
		wake := c.wake
		c.mu.Unlock()

		select {
		case <-wake:
			continue
		case <-cancel.Done():
			var zero T
			return zero, false
		}
	}
}

// Unsubscribe removes the cursor and lets the garbage collector drop any
// items no other subscriber still needs.
func (s *Subscription[T]) Unsubscribe() {
	c := s.ch
	c.mu.Lock()
	if _, present := c.subs[s.id]; !present {
		c.mu.Unlock()
		return
	}
	delete(c.subs, s.id)
	c.gcLocked()
	c.mu.Unlock()
}

func (c *Channel[T]) gc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gcLocked()
}

// gcLocked drops the prefix every remaining subscriber has already
// consumed. With zero subscribers there is no floor to respect, so the
// whole buffer is released.
func (c *Channel[T]) gcLocked() {
	if len(c.subs) == 0 {
		c.items = nil
		return
	}
	min := int64(-1)
	for _, sub := range c.subs {
		if min == -1 || sub.cursor < min {
			min = sub.cursor
		}
	}
	if min > c.base {
		drop := min - c.base
		c.items = c.items[drop:]
		c.base = min
	}
}

// Snapshot atomically computes per-subscriber lag and resets all delta
// counters, so repeated calls report strictly the activity since the
// previous call.
func (c *Channel[T]) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	tail := c.base + int64(len(c.items))
	subs := make(map[int64]SubscriberSnapshot, len(c.subs))
	for id, sub := range c.subs {
		subs[id] = SubscriberSnapshot{
			Lag:           tail - sub.cursor,
			MessagesDelta: sub.msgDelta,
			BytesDelta:    sub.byteDelta,
		}
		sub.msgDelta = 0
		sub.byteDelta = 0
	}

	snap := Snapshot{
		Name:            c.name,
		ElementType:     c.elementType,
		MessagesDelta:   c.msgDelta,
		BytesDelta:      c.byteDelta,
		LastPublishTime: c.lastPublish,
		BufferDepth:     len(c.items),
		Subscribers:     subs,
	}
	c.msgDelta = 0
	c.byteDelta = 0
	return snap
}
