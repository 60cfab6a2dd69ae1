package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/payos-hq/payos-sandbox/internal/api/http"
	"github.com/payos-hq/payos-sandbox/internal/facilitator/domain"
	"github.com/payos-hq/payos-sandbox/internal/facilitator/service"
)

// Handler exposes the x402 facilitator surface.
type Handler struct {
	facilitator *service.Facilitator
}

// NewHandler creates a new facilitator Handler
func NewHandler(facilitator *service.Facilitator) *Handler {
	return &Handler{facilitator: facilitator}
}

// Verify checks a payment payload against payment requirements.
func (h *Handler) Verify(c *gin.Context) {
	var req domain.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.CodeInvalidRequest, "invalid request body", nil)
		return
	}

	httpapi.OK(c, http.StatusOK, h.facilitator.Verify(c.Request.Context(), &req))
}

// Settle executes a verified payment on the sandbox network.
func (h *Handler) Settle(c *gin.Context) {
	var req domain.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.CodeInvalidRequest, "invalid request body", nil)
		return
	}

	result, err := h.facilitator.Settle(c.Request.Context(), &req)
	if err != nil {
		httpapi.Fail(c, http.StatusInternalServerError, httpapi.CodeInternalError, "settlement failed", nil)
		return
	}

	httpapi.OK(c, http.StatusOK, result)
}

// Supported lists accepted scheme/network pairs.
func (h *Handler) Supported(c *gin.Context) {
	httpapi.OK(c, http.StatusOK, gin.H{"kinds": h.facilitator.Supported()})
}

// Register registers the facilitator routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/verify", h.Verify)
	rg.POST("/settle", h.Settle)
	rg.GET("/supported", h.Supported)
}
