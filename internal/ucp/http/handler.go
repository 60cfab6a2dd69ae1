package http

import (
	"github.com/payos-hq/payos-sandbox/internal/ucp/service"
)

// Handler bundles the UCP HTTP handlers around the settlement services.
type Handler struct {
	quotes      *service.QuoteService
	settlements *service.SettlementService
}

// NewHandler creates a new UCP Handler
func NewHandler(quotes *service.QuoteService, settlements *service.SettlementService) *Handler {
	return &Handler{
		quotes:      quotes,
		settlements: settlements,
	}
}
