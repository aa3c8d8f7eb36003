// Package graph owns the node and edge store: creating and wiring
// component instances, validating slot types, and driving StartAll/
// StopAll over the whole instantiated set.
package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arung-agamani/streamgraph/internal/core/channel"
	"github.com/arung-agamani/streamgraph/internal/core/component"
	"github.com/arung-agamani/streamgraph/internal/core/registry"
)

var (
	ErrUnknownComponent = errors.New("graph: unknown component class")
	ErrNodeNotFound     = errors.New("graph: node not found")
	ErrSlotNotFound     = errors.New("graph: slot not found")
	ErrTypeMismatch     = errors.New("graph: slot type mismatch")
	ErrSlotOccupied     = errors.New("graph: input slot already has an upstream edge")
	ErrEdgeExists       = errors.New("graph: edge already exists")
	ErrEdgeNotFound     = errors.New("graph: edge not found")
	ErrComponentInit    = errors.New("graph: component constructor rejected init params")
)

// Position is UI placement metadata, carried through but never
// interpreted by the runtime.
type Position struct {
	X float64
	Y float64
}

// Node is one instantiated component inside a graph.
type Node struct {
	ID         string
	ClassName  string
	Component  component.Component
	Position   Position
	InitParams map[string]any
}

// Edge connects one node's output slot to another node's input slot.
type Edge struct {
	SourceNode string `json:"source_node" yaml:"source_node"`
	SourceSlot string `json:"source_slot" yaml:"source_slot"`
	TargetNode string `json:"target_node" yaml:"target_node"`
	TargetSlot string `json:"target_slot" yaml:"target_slot"`
}

// DocumentNode is the persisted, pre-instantiation shape of a node.
type DocumentNode struct {
	Type   string         `json:"type" yaml:"type"`
	X      float64        `json:"x" yaml:"x"`
	Y      float64        `json:"y" yaml:"y"`
	Config map[string]any `json:"config" yaml:"config"`
}

// Document is the whole persisted graph: instantiable nodes plus the
// edges between them.
type Document struct {
	Nodes map[string]DocumentNode `json:"nodes" yaml:"nodes"`
	Edges []Edge                  `json:"edges" yaml:"edges"`
}

// Store is whatever persists a Document. Graph treats a nil Store as
// "persistence disabled".
type Store interface {
	Save(Document) error
}

// Metrics is the result of a CollectMetrics sweep.
type Metrics struct {
	Nodes     map[string]component.Snapshot
	Timestamp time.Time
}

// Graph is the single-writer store of instantiated nodes and the edges
// between them. All mutation methods take the same lock; readers take a
// snapshot copy under that same lock and then work lock-free.
type Graph struct {
	mu       sync.Mutex
	registry *registry.Registry
	nodes    map[string]*Node
	edges    []Edge
	store    Store
}

func New(reg *registry.Registry, store Store) *Graph {
	return &Graph{
		registry: reg,
		nodes:    make(map[string]*Node),
		store:    store,
	}
}

// CreateNode instantiates a component of the named class. An empty id
// generates a fresh one. Creating a node under an id that already exists
// returns the existing node rather than erroring or replacing it.
func (g *Graph) CreateNode(className, id string, init map[string]any) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	class, ok := g.registry.Lookup(className)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, className)
	}
	if id == "" {
		id = uuid.NewString()
	}
	if existing, ok := g.nodes[id]; ok {
		return existing, nil
	}

	comp, err := class.New(init)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComponentInit, err)
	}
	node := &Node{ID: id, ClassName: className, Component: comp, InitParams: init}
	g.nodes[id] = node
	g.persistLocked()
	return node, nil
}

// DeleteNode stops the node and every neighbor an incident edge
// connected it to, removes those edges, then removes the node itself.
// Deleting an unknown id is a no-op.
func (g *Graph) DeleteNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[id]
	if !ok {
		return
	}
	node.Component.Stop()

	affected := make(map[string]struct{})
	kept := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if e.SourceNode != id && e.TargetNode != id {
			kept = append(kept, e)
			continue
		}
		if e.SourceNode == id {
			affected[e.TargetNode] = struct{}{}
		}
		if e.TargetNode == id {
			affected[e.SourceNode] = struct{}{}
		}
	}
	g.edges = kept
	for otherID := range affected {
		if other, ok := g.nodes[otherID]; ok {
			other.Component.Stop()
		}
	}
	delete(g.nodes, id)
	g.persistLocked()
}

func slotType(sig component.SlotSignature, name string) (component.Slot, bool) {
	for _, s := range sig {
		if s.Name == name {
			return s, true
		}
	}
	return component.Slot{}, false
}

// CreateEdge validates that both nodes and slots exist, that the output
// and input element types match exactly, that the target slot has no
// other upstream edge, and that the edge doesn't already exist, before
// recording it.
func (g *Graph) CreateEdge(srcID, srcSlot, tgtID, tgtSlot string) (Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	src, ok := g.nodes[srcID]
	if !ok {
		return Edge{}, fmt.Errorf("%w: %s", ErrNodeNotFound, srcID)
	}
	tgt, ok := g.nodes[tgtID]
	if !ok {
		return Edge{}, fmt.Errorf("%w: %s", ErrNodeNotFound, tgtID)
	}

	srcClass, _ := g.registry.Lookup(src.ClassName)
	tgtClass, _ := g.registry.Lookup(tgt.ClassName)

	srcSlotDef, ok := slotType(srcClass.OutputTypes(), srcSlot)
	if !ok {
		return Edge{}, fmt.Errorf("%w: output slot %q on node %s", ErrSlotNotFound, srcSlot, srcID)
	}
	tgtSlotDef, ok := slotType(tgtClass.InputTypes(), tgtSlot)
	if !ok {
		return Edge{}, fmt.Errorf("%w: input slot %q on node %s", ErrSlotNotFound, tgtSlot, tgtID)
	}

	if !srcSlotDef.Type.Equal(tgtSlotDef.Type) {
		return Edge{}, fmt.Errorf("%w: %s produces %s, %s expects %s",
			ErrTypeMismatch, srcSlot, srcSlotDef.Type, tgtSlot, tgtSlotDef.Type)
	}

	edge := Edge{SourceNode: srcID, SourceSlot: srcSlot, TargetNode: tgtID, TargetSlot: tgtSlot}
	for _, e := range g.edges {
		if e == edge {
			return Edge{}, fmt.Errorf("%w: %s.%s -> %s.%s", ErrEdgeExists, srcID, srcSlot, tgtID, tgtSlot)
		}
		if e.TargetNode == tgtID && e.TargetSlot == tgtSlot {
			return Edge{}, fmt.Errorf("%w: %s.%s", ErrSlotOccupied, tgtID, tgtSlot)
		}
	}

	g.edges = append(g.edges, edge)
	g.persistLocked()
	return edge, nil
}

// DeleteEdge removes the edge and stops both endpoints: neither side's
// remaining data is assumed still meaningful once the link between them
// is gone.
func (g *Graph) DeleteEdge(srcID, srcSlot, tgtID, tgtSlot string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	target := Edge{SourceNode: srcID, SourceSlot: srcSlot, TargetNode: tgtID, TargetSlot: tgtSlot}
	idx := -1
	for i, e := range g.edges {
		if e == target {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: %s.%s -> %s.%s", ErrEdgeNotFound, srcID, srcSlot, tgtID, tgtSlot)
	}
	g.edges = append(g.edges[:idx], g.edges[idx+1:]...)

	for _, id := range [2]string{srcID, tgtID} {
		if n, ok := g.nodes[id]; ok {
			n.Component.Stop()
		}
	}
	g.persistLocked()
	return nil
}

// StartAll binds every edge's upstream output channel into its
// downstream input slot, then starts every node. Bindings are computed
// once from the full edge set before any node starts, so start order
// never affects what a node sees at Start.
func (g *Graph) StartAll() {
	g.mu.Lock()
	bindings := make(map[string]map[string]channel.Typed, len(g.nodes))
	for id := range g.nodes {
		bindings[id] = make(map[string]channel.Typed)
	}
	for _, e := range g.edges {
		src, ok := g.nodes[e.SourceNode]
		if !ok {
			continue
		}
		ch, ok := src.Component.OutputChannels()[e.SourceSlot]
		if !ok {
			continue
		}
		bindings[e.TargetNode][e.TargetSlot] = ch
	}
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	g.mu.Unlock()

	for _, n := range nodes {
		n.Component.Start(bindings[n.ID])
	}
}

// StopAll trips every node's cancel signal. It does not wait for worker
// goroutines to exit.
func (g *Graph) StopAll() {
	g.mu.Lock()
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	g.mu.Unlock()
	for _, n := range nodes {
		n.Component.Stop()
	}
}

// GetNode returns the node, if present.
func (g *Graph) GetNode(id string) (*Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	return n, ok
}

// ListNodes returns every node, order unspecified.
func (g *Graph) ListNodes() []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// ListEdges returns a copy of the current edge set.
func (g *Graph) ListEdges() []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// CollectMetrics snapshots every node's component, including the
// telemetry of its output channels.
func (g *Graph) CollectMetrics() Metrics {
	g.mu.Lock()
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	g.mu.Unlock()

	out := make(map[string]component.Snapshot, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n.Component.Snapshot()
	}
	return Metrics{Nodes: out, Timestamp: time.Now()}
}

// LoadDocument instantiates every node and edge from a persisted
// Document. Existing nodes and edges are left untouched; ids already
// present keep their current instance and only take their position from
// the document, and edges already present are skipped.
func (g *Graph) LoadDocument(doc Document) error {
	for id, dn := range doc.Nodes {
		node, err := g.CreateNode(dn.Type, id, dn.Config)
		if err != nil {
			return fmt.Errorf("loading node %s: %w", id, err)
		}
		g.mu.Lock()
		node.Position = Position{X: dn.X, Y: dn.Y}
		g.mu.Unlock()
	}
	for _, e := range doc.Edges {
		if _, err := g.CreateEdge(e.SourceNode, e.SourceSlot, e.TargetNode, e.TargetSlot); err != nil && !errors.Is(err, ErrEdgeExists) {
			return fmt.Errorf("loading edge %s.%s -> %s.%s: %w", e.SourceNode, e.SourceSlot, e.TargetNode, e.TargetSlot, err)
		}
	}
	return nil
}

// persistLocked must be called with mu held. A nil store disables
// persistence entirely.
func (g *Graph) persistLocked() {
	if g.store == nil {
		return
	}
	doc := Document{
		Nodes: make(map[string]DocumentNode, len(g.nodes)),
		Edges: append([]Edge(nil), g.edges...),
	}
	for id, n := range g.nodes {
		doc.Nodes[id] = DocumentNode{
			Type:   n.ClassName,
			X:      n.Position.X,
			Y:      n.Position.Y,
			Config: n.InitParams,
		}
	}
	if err := g.store.Save(doc); err != nil {
		slog.Error("failed to persist graph", "error", err)
	}
}
