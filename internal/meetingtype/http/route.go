package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers meeting-type related routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/meeting-types")

	// === Authenticated Routes (owner) ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PATCH("/:id", h.Update)
		group.DELETE("/:id", h.Delete) // 409 while bookings reference it
	}

	// === Public Routes ===
	g.GET("/public/portfolios/:username/meeting-types", h.PublicList)
}
