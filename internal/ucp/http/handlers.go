package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/payos-hq/payos-sandbox/internal/api/http"
	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
)

// CreateQuote prices a corridor conversion.
func (h *Handler) CreateQuote(c *gin.Context) {
	var req domain.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.CodeInvalidRequest, "invalid request body", nil)
		return
	}

	if req.Corridor == "" || req.Amount <= 0 || req.Currency == "" {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.CodeInvalidRequest,
			"corridor, amount and currency are required", nil)
		return
	}

	quote, err := h.quotes.CreateQuote(c.Request.Context(), &req)
	if err != nil {
		httpapi.FailFromError(c, err)
		return
	}

	httpapi.OK(c, http.StatusCreated, quote)
}

// AcquireToken mints a single-use settlement token.
func (h *Handler) AcquireToken(c *gin.Context) {
	var req domain.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.CodeInvalidRequest, "invalid request body", nil)
		return
	}

	if req.Corridor == "" || req.Amount <= 0 || req.Currency == "" {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.CodeInvalidRequest,
			"corridor, amount and currency are required", nil)
		return
	}

	token, err := h.settlements.AcquireToken(c.Request.Context(), &req)
	if err != nil {
		httpapi.FailFromError(c, err)
		return
	}

	httpapi.OK(c, http.StatusCreated, token)
}

// Settle redeems a settlement token and starts settlement progression.
func (h *Handler) Settle(c *gin.Context) {
	var req domain.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.CodeInvalidRequest, "invalid request body", nil)
		return
	}

	if req.Token == "" {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.CodeInvalidRequest, "token is required", nil)
		return
	}

	settlement, err := h.settlements.Settle(c.Request.Context(), &req)
	if err != nil {
		httpapi.FailFromError(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, settlement.Redacted())
}

// GetSettlement retrieves a settlement by ID.
func (h *Handler) GetSettlement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.CodeInvalidRequest, "settlement ID is required", nil)
		return
	}

	settlement, err := h.settlements.GetSettlement(c.Request.Context(), id)
	if err != nil {
		httpapi.FailFromError(c, err)
		return
	}

	httpapi.OK(c, http.StatusOK, settlement.Redacted())
}
