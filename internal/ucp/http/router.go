package http

import "github.com/gin-gonic/gin"

// Register registers the UCP settlement routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/quote", h.CreateQuote)
	rg.POST("/tokens", h.AcquireToken)
	rg.POST("/settle", h.Settle)
	rg.GET("/settlements/:id", h.GetSettlement)
	rg.GET("/settlements/:id/events", h.StreamSettlementEvents)
}
