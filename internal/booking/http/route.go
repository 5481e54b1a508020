package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking related routes. limiter guards the public booking
// endpoint and may be nil.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc, limiter gin.HandlerFunc) {
	// === Public Routes ===
	public := g.Group("/public")
	{
		public.GET("/meeting-types/:id/availability", h.Availability)
		if limiter != nil {
			public.POST("/bookings", limiter, h.Create)
		} else {
			public.POST("/bookings", h.Create)
		}
	}

	// === Authenticated Routes (owner) ===
	group := g.Group("/bookings")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.Update)
		group.POST("/:id/approve", h.Approve)
		group.POST("/:id/cancel", h.Cancel)
		group.POST("/:id/reminders", h.RecordReminder)
	}
}
