package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers media routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	// === Authenticated Routes ===
	group := g.Group("/media")
	group.Use(authMiddleware)
	{
		group.POST("", h.Upload)
		group.DELETE("/:id", h.Delete)
	}
	if h.setProfileImage != nil {
		g.POST("/me/profile/image", authMiddleware, h.UploadProfileImage)
	}

	// === Public Routes ===
	g.GET("/public/media/:id", h.Serve)
	g.GET("/public/media/:id/thumbnail", h.ServeThumbnail)
}
