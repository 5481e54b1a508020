package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers invoice related routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	invoices := g.Group("/invoices")
	invoices.Use(authMiddleware)
	{
		invoices.POST("", h.Create)
	}
}
