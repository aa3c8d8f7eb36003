// Package service implements the business logic behind the six external
// graph operations, translating core errors into the status codes the
// handler layer renders.
package service

import (
	"errors"

	"github.com/arung-agamani/streamgraph/internal/core/component"
	"github.com/arung-agamani/streamgraph/internal/core/graph"
	"github.com/arung-agamani/streamgraph/internal/core/registry"
)

// NodeView is the discovery-friendly rendering of one graph node.
type NodeView struct {
	ID        string
	ClassName string
	Status    component.Status
	X         float64
	Y         float64
}

// ComponentView is one registered class as rendered for discovery.
type ComponentView struct {
	Name     string
	Category component.Category
	Inputs   component.SlotSignature
	Outputs  component.SlotSignature
	Init     []component.InitParam
}

// GraphService wraps a graph.Graph and registry.Registry with the
// request-shaped operations the HTTP layer calls.
type GraphService struct {
	graph *graph.Graph
	reg   *registry.Registry
}

func NewGraphService(g *graph.Graph, reg *registry.Registry) *GraphService {
	return &GraphService{graph: g, reg: reg}
}

func (s *GraphService) ListComponents() []ComponentView {
	classes := s.reg.List()
	out := make([]ComponentView, 0, len(classes))
	for _, c := range classes {
		out = append(out, ComponentView{
			Name:     c.Name,
			Category: c.Category(),
			Inputs:   c.InputTypes(),
			Outputs:  c.OutputTypes(),
			Init:     c.InitTypes(),
		})
	}
	return out
}

func (s *GraphService) CreateNode(className, id string, init map[string]any) (NodeView, error) {
	node, err := s.graph.CreateNode(className, id, init)
	if err != nil {
		return NodeView{}, err
	}
	return nodeView(node), nil
}

func (s *GraphService) DeleteNode(id string) {
	s.graph.DeleteNode(id)
}

func (s *GraphService) CreateEdge(srcID, srcSlot, tgtID, tgtSlot string) (graph.Edge, error) {
	return s.graph.CreateEdge(srcID, srcSlot, tgtID, tgtSlot)
}

func (s *GraphService) DeleteEdge(srcID, srcSlot, tgtID, tgtSlot string) error {
	return s.graph.DeleteEdge(srcID, srcSlot, tgtID, tgtSlot)
}

func (s *GraphService) StartAll() {
	s.graph.StartAll()
}

func (s *GraphService) StopAll() {
	s.graph.StopAll()
}

func (s *GraphService) ListNodes() []NodeView {
	nodes := s.graph.ListNodes()
	out := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeView(n))
	}
	return out
}

func (s *GraphService) ListEdges() []graph.Edge {
	return s.graph.ListEdges()
}

func (s *GraphService) GetNode(id string) (NodeView, bool) {
	n, ok := s.graph.GetNode(id)
	if !ok {
		return NodeView{}, false
	}
	return nodeView(n), true
}

func (s *GraphService) CollectMetrics() graph.Metrics {
	return s.graph.CollectMetrics()
}

func nodeView(n *graph.Node) NodeView {
	return NodeView{
		ID:        n.ID,
		ClassName: n.ClassName,
		Status:    n.Component.Status(),
		X:         n.Position.X,
		Y:         n.Position.Y,
	}
}

// StatusFor maps a core graph error to the HTTP status the handler
// should respond with.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, graph.ErrUnknownComponent),
		errors.Is(err, graph.ErrNodeNotFound),
		errors.Is(err, graph.ErrSlotNotFound),
		errors.Is(err, graph.ErrEdgeNotFound):
		return 404
	case errors.Is(err, graph.ErrTypeMismatch),
		errors.Is(err, graph.ErrSlotOccupied),
		errors.Is(err, graph.ErrEdgeExists),
		errors.Is(err, graph.ErrComponentInit):
		return 409
	default:
		return 500
	}
}
