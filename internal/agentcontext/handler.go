// Package agentcontext serves a per-key context snapshot so agents can
// reason about their sandbox session without parsing error responses.
package agentcontext

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httpapi "github.com/payos-hq/payos-sandbox/internal/api/http"
	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
)

// Context is the agent-facing session snapshot.
type Context struct {
	Mode            string            `json:"mode"`
	KeyPrefix       string            `json:"key_prefix"`
	Corridors       []string          `json:"corridors"`
	QuoteTTL        string            `json:"quote_ttl"`
	TokenTTL        string            `json:"token_ttl"`
	RateLimitRPS    float64           `json:"rate_limit_rps"`
	RateLimitBurst  int               `json:"rate_limit_burst"`
	FailureTriggers map[string]string `json:"failure_triggers"`
}

// Handler serves the context endpoint.
type Handler struct {
	quoteTTL       time.Duration
	tokenTTL       time.Duration
	rateLimitRPS   float64
	rateLimitBurst int
}

// NewHandler creates a new agentcontext Handler
func NewHandler(quoteTTL, tokenTTL time.Duration, rateLimitRPS float64, rateLimitBurst int) *Handler {
	return &Handler{
		quoteTTL:       quoteTTL,
		tokenTTL:       tokenTTL,
		rateLimitRPS:   rateLimitRPS,
		rateLimitBurst: rateLimitBurst,
	}
}

// Get returns the context snapshot for the calling key.
func (h *Handler) Get(c *gin.Context) {
	corridors := domain.Corridors()
	names := make([]string, 0, len(corridors))
	for _, corridor := range corridors {
		names = append(names, corridor.Name)
	}

	key := c.GetString("api_key")
	prefix := key
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}

	httpapi.OK(c, http.StatusOK, Context{
		Mode:           "sandbox",
		KeyPrefix:      prefix,
		Corridors:      names,
		QuoteTTL:       h.quoteTTL.String(),
		TokenTTL:       h.tokenTTL.String(),
		RateLimitRPS:   h.rateLimitRPS,
		RateLimitBurst: h.rateLimitBurst,
		FailureTriggers: map[string]string{
			"amount_cents_99":          "settlement fails with insufficient_liquidity",
			"recipient_prefix_blocked": "settlement fails with compliance_rejected",
			"metadata_sandbox_outcome": "set to \"fail\" to force forced_failure",
		},
	})
}

// Register registers the context route
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/context", h.Get)
}
