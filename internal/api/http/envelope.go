package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
)

// Envelope is the machine-readable response shape every endpoint
// returns, success or failure: { data, error, meta, suggestions }.
type Envelope struct {
	Data        interface{}  `json:"data"`
	Error       *ErrorBody   `json:"error"`
	Meta        Meta         `json:"meta"`
	Suggestions []Suggestion `json:"suggestions"`
}

// ErrorBody carries a stable machine-readable code plus a human message.
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Meta carries request correlation data.
type Meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Suggestion is a remediation hint an agent can act on without parsing
// the error message.
type Suggestion struct {
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Error taxonomy. Codes are part of the API contract and never change
// meaning between releases.
const (
	CodeInvalidRequest      = "invalid_request"
	CodeUnauthorized        = "unauthorized"
	CodeNotFound            = "not_found"
	CodeRateLimited         = "rate_limited"
	CodeQuoteExpired        = "quote_expired"
	CodeTokenExpired        = "token_expired"
	CodeTokenAlreadyUsed    = "token_already_used"
	CodeIdempotencyConflict = "idempotency_conflict"
	CodeUnsupportedCorridor = "unsupported_corridor"
	CodeUnsupportedScheme   = "unsupported_scheme"
	CodeAmountOutOfRange    = "amount_out_of_range"
	CodeInvalidRecipient    = "invalid_recipient"
	CodeSettlementFailed    = "settlement_failed"
	CodeInternalError       = "internal_error"
)

var suggestionsByCode = map[string][]Suggestion{
	CodeUnauthorized: {
		{Action: "set_api_key", Description: "Send a sandbox API key as 'Authorization: Bearer pk_test_...'."},
	},
	CodeRateLimited: {
		{Action: "retry_later", Description: "Back off and retry; sandbox rate limits reset within seconds."},
	},
	CodeQuoteExpired: {
		{Action: "requote", Description: "Request a fresh quote with POST /v1/ucp/quote and retry."},
	},
	CodeTokenExpired: {
		{Action: "reacquire_token", Description: "Acquire a new settlement token with POST /v1/ucp/tokens."},
	},
	CodeTokenAlreadyUsed: {
		{Action: "check_settlement", Description: "The token was already redeemed; fetch the settlement by its ID instead of retrying."},
		{Action: "use_idempotency_key", Description: "Pass an idempotency_key on /v1/ucp/settle so retries replay the original settlement."},
	},
	CodeIdempotencyConflict: {
		{Action: "change_idempotency_key", Description: "This idempotency_key is bound to a different token; use a new key per payment."},
	},
	CodeUnsupportedCorridor: {
		{Action: "list_capabilities", Description: "Fetch GET /v1/capabilities for the corridors this sandbox supports."},
	},
	CodeUnsupportedScheme: {
		{Action: "list_supported", Description: "Fetch GET /v1/x402/facilitator/supported for accepted scheme/network pairs."},
	},
	CodeAmountOutOfRange: {
		{Action: "adjust_amount", Description: "Keep the amount within the corridor limits listed by GET /v1/capabilities."},
	},
	CodeInvalidRecipient: {
		{Action: "fix_recipient", Description: "Match the recipient fields to the corridor: pix_key for pix, 18-digit clabe for spei, routing/account for ach."},
	},
	CodeSettlementFailed: {
		{Action: "inspect_failure_reason", Description: "Read failure_reason on the settlement; sandbox failures are injected deterministically by reserved amounts and recipients."},
	},
}

// OK writes a success envelope.
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{
		Data:        data,
		Meta:        metaFrom(c),
		Suggestions: []Suggestion{},
	})
}

// Fail writes an error envelope with suggestions derived from the code.
func Fail(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	sugg := suggestionsByCode[code]
	if sugg == nil {
		sugg = []Suggestion{}
	}
	c.JSON(status, Envelope{
		Error:       &ErrorBody{Code: code, Message: message, Details: details},
		Meta:        metaFrom(c),
		Suggestions: sugg,
	})
}

// AbortFail writes an error envelope and aborts the handler chain.
func AbortFail(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	Fail(c, status, code, message, details)
	c.Abort()
}

// FailFromError maps domain errors to envelope responses. Unrecognized
// errors become 500 internal_error without leaking internals.
func FailFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrQuoteNotFound),
		errors.Is(err, domain.ErrTokenNotFound),
		errors.Is(err, domain.ErrSettlementNotFound):
		Fail(c, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrQuoteExpired):
		Fail(c, http.StatusGone, CodeQuoteExpired, err.Error(), nil)
	case errors.Is(err, domain.ErrTokenExpired):
		Fail(c, http.StatusGone, CodeTokenExpired, err.Error(), nil)
	case errors.Is(err, domain.ErrTokenAlreadyUsed):
		Fail(c, http.StatusConflict, CodeTokenAlreadyUsed, err.Error(), nil)
	case errors.Is(err, domain.ErrIdempotencyConflict):
		Fail(c, http.StatusConflict, CodeIdempotencyConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrUnsupportedCorridor):
		Fail(c, http.StatusUnprocessableEntity, CodeUnsupportedCorridor, err.Error(), nil)
	case errors.Is(err, domain.ErrAmountOutOfRange):
		Fail(c, http.StatusUnprocessableEntity, CodeAmountOutOfRange, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidRecipient):
		Fail(c, http.StatusUnprocessableEntity, CodeInvalidRecipient, err.Error(), nil)
	default:
		Fail(c, http.StatusInternalServerError, CodeInternalError, "internal error", nil)
	}
}

func metaFrom(c *gin.Context) Meta {
	return Meta{
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().UTC(),
	}
}
