// Package httpapi wires the gin engine: security headers on every
// response, an unauthenticated login and discovery surface, and a
// bearer-token-guarded set of graph mutation and control routes.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/streamgraph/internal/httpapi/auth"
	"github.com/arung-agamani/streamgraph/internal/httpapi/handler"
	"github.com/arung-agamani/streamgraph/internal/httpapi/service"
)

// SecurityHeaders adds standard hardening headers to every response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

// NewRouter builds the full gin engine for the graph management surface.
func NewRouter(svc *service.GraphService, a *auth.Auth) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), SecurityHeaders())

	h := handler.NewGraphHandlers(svc)

	r.GET("/health", h.Health)

	r.POST("/api/login", func(c *gin.Context) {
		var body struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
			return
		}
		token, err := a.Authenticate(body.Username, body.Password, c.ClientIP())
		if err != nil {
			slog.Warn("login failed", "remote", c.ClientIP(), "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "token": token})
	})

	api := r.Group("/api")
	api.GET("/components", h.ListComponents)
	api.GET("/nodes", h.ListNodes)
	api.GET("/nodes/:id", h.GetNode)
	api.GET("/edges", h.ListEdges)
	api.GET("/metrics", h.CollectMetrics)

	protected := api.Group("")
	protected.Use(a.RequireToken())
	protected.POST("/nodes", h.CreateNode)
	protected.DELETE("/nodes/:id", h.DeleteNode)
	protected.POST("/edges", h.CreateEdge)
	protected.DELETE("/edges", h.DeleteEdge)
	protected.POST("/graph/start", h.StartAll)
	protected.POST("/graph/stop", h.StopAll)

	return r
}
