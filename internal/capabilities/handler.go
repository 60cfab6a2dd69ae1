// Package capabilities serves the machine-readable discovery document
// agent integrations read before making payments.
package capabilities

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/payos-hq/payos-sandbox/internal/api/http"
	facdomain "github.com/payos-hq/payos-sandbox/internal/facilitator/domain"
	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
)

// Document is the capabilities-discovery payload.
type Document struct {
	APIVersion string               `json:"api_version"`
	Mode       string               `json:"mode"`
	Corridors  []CorridorCapability `json:"corridors"`
	X402       X402Capability       `json:"x402"`
	Endpoints  map[string]string    `json:"endpoints"`
	MCP        map[string]string    `json:"mcp"`
}

// CorridorCapability describes one payout rail.
type CorridorCapability struct {
	Name         string  `json:"name"`
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	FXRate       float64 `json:"fx_rate"`
	FeeFixed     float64 `json:"fee_fixed"`
	FeePercent   float64 `json:"fee_percent"`
	MinAmount    float64 `json:"min_amount"`
	MaxAmount    float64 `json:"max_amount"`
}

// X402Capability describes the facilitator surface.
type X402Capability struct {
	Facilitator string                    `json:"facilitator"`
	Kinds       []facdomain.SupportedKind `json:"kinds"`
}

// Handler serves the capabilities document.
type Handler struct {
	version string
}

// NewHandler creates a new capabilities Handler
func NewHandler(version string) *Handler {
	return &Handler{version: version}
}

// Get returns the discovery document.
func (h *Handler) Get(c *gin.Context) {
	corridors := domain.Corridors()
	caps := make([]CorridorCapability, 0, len(corridors))
	for _, corridor := range corridors {
		caps = append(caps, CorridorCapability{
			Name:         corridor.Name,
			FromCurrency: corridor.FromCurrency,
			ToCurrency:   corridor.ToCurrency,
			FXRate:       corridor.FXRate,
			FeeFixed:     corridor.FeeFixed,
			FeePercent:   corridor.FeePercent,
			MinAmount:    corridor.MinAmount,
			MaxAmount:    corridor.MaxAmount,
		})
	}

	httpapi.OK(c, http.StatusOK, Document{
		APIVersion: h.version,
		Mode:       "sandbox",
		Corridors:  caps,
		X402: X402Capability{
			Facilitator: "/v1/x402/facilitator",
			Kinds: []facdomain.SupportedKind{
				{X402Version: facdomain.X402Version, Scheme: facdomain.SchemeExact, Network: facdomain.NetworkSandbox},
			},
		},
		Endpoints: map[string]string{
			"quote":       "/v1/ucp/quote",
			"tokens":      "/v1/ucp/tokens",
			"settle":      "/v1/ucp/settle",
			"settlements": "/v1/ucp/settlements/:id",
			"events":      "/v1/ucp/settlements/:id/events",
			"context":     "/v1/context",
		},
		MCP: map[string]string{
			"transport": "stdio",
			"command":   "payos-sandbox-mcp",
		},
	})
}

// Register registers the capabilities route
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/capabilities", h.Get)
}
