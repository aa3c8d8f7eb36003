// Package handler adapts GraphService calls to gin request/response
// handling: binding bodies, mapping service errors to status codes, and
// rendering JSON.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/streamgraph/internal/httpapi/service"
)

type GraphHandlers struct {
	svc *service.GraphService
}

func NewGraphHandlers(svc *service.GraphService) *GraphHandlers {
	return &GraphHandlers{svc: svc}
}

func (h *GraphHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListComponents handles GET /api/components
func (h *GraphHandlers) ListComponents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "components": h.svc.ListComponents()})
}

type createNodeRequest struct {
	Type string         `json:"type" binding:"required"`
	ID   string         `json:"id"`
	X    float64        `json:"x"`
	Y    float64        `json:"y"`
	Init map[string]any `json:"init"`
}

// CreateNode handles POST /api/nodes
func (h *GraphHandlers) CreateNode(c *gin.Context) {
	var req createNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	node, err := h.svc.CreateNode(req.Type, req.ID, req.Init)
	if err != nil {
		c.JSON(service.StatusFor(err), gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "node": node})
}

// DeleteNode handles DELETE /api/nodes/:id
func (h *GraphHandlers) DeleteNode(c *gin.Context) {
	h.svc.DeleteNode(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListNodes handles GET /api/nodes
func (h *GraphHandlers) ListNodes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "nodes": h.svc.ListNodes()})
}

// GetNode handles GET /api/nodes/:id
func (h *GraphHandlers) GetNode(c *gin.Context) {
	node, ok := h.svc.GetNode(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "node not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "node": node})
}

type edgeRequest struct {
	SourceNode string `json:"source_node" binding:"required"`
	SourceSlot string `json:"source_slot" binding:"required"`
	TargetNode string `json:"target_node" binding:"required"`
	TargetSlot string `json:"target_slot" binding:"required"`
}

// CreateEdge handles POST /api/edges
func (h *GraphHandlers) CreateEdge(c *gin.Context) {
	var req edgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	edge, err := h.svc.CreateEdge(req.SourceNode, req.SourceSlot, req.TargetNode, req.TargetSlot)
	if err != nil {
		c.JSON(service.StatusFor(err), gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "edge": edge})
}

// DeleteEdge handles DELETE /api/edges
func (h *GraphHandlers) DeleteEdge(c *gin.Context) {
	var req edgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	if err := h.svc.DeleteEdge(req.SourceNode, req.SourceSlot, req.TargetNode, req.TargetSlot); err != nil {
		c.JSON(service.StatusFor(err), gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListEdges handles GET /api/edges
func (h *GraphHandlers) ListEdges(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "edges": h.svc.ListEdges()})
}

// StartAll handles POST /api/graph/start
func (h *GraphHandlers) StartAll(c *gin.Context) {
	h.svc.StartAll()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// StopAll handles POST /api/graph/stop
func (h *GraphHandlers) StopAll(c *gin.Context) {
	h.svc.StopAll()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CollectMetrics handles GET /api/metrics
func (h *GraphHandlers) CollectMetrics(c *gin.Context) {
	metrics := h.svc.CollectMetrics()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": metrics.Timestamp, "nodes": metrics.Nodes})
}
