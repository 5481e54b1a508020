package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers portfolio related routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	// === Authenticated Routes ===
	me := g.Group("/me/profile")
	me.Use(authMiddleware)
	{
		me.GET("", h.GetMine)
		me.PUT("", h.UpsertMine)
		me.DELETE("", h.ResetMine)
		me.GET("/qrcode", h.MyQRCode)
	}

	// === Public Routes ===
	g.GET("/public/portfolios/:username", h.GetPublic)
	g.GET("/public/portfolios/:username/qrcode", h.PublicQRCode)
}
