package domain

import "errors"

// X402Version is the protocol version this facilitator speaks.
const X402Version = 1

// Scheme and network supported by the sandbox facilitator.
const (
	SchemeExact    = "exact"
	NetworkSandbox = "payos-sandbox"
)

// PaymentRequirements describes what a resource server demands before
// serving a request.
type PaymentRequirements struct {
	Scheme            string `json:"scheme"`
	Network           string `json:"network"`
	MaxAmountRequired string `json:"maxAmountRequired"`
	Resource          string `json:"resource"`
	Description       string `json:"description,omitempty"`
	PayTo             string `json:"payTo"`
	MaxTimeoutSeconds int    `json:"maxTimeoutSeconds,omitempty"`
	Asset             string `json:"asset,omitempty"`
}

// ExactPayload is the scheme-specific payment authorization for the
// sandbox "exact" scheme. No on-chain signature exists here; the nonce
// plus sandbox key stand in for one.
type ExactPayload struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  int64  `json:"validAfter"`
	ValidBefore int64  `json:"validBefore"`
	Nonce       string `json:"nonce"`
}

// PaymentPayload is the client's payment authorization envelope.
type PaymentPayload struct {
	X402Version int          `json:"x402Version"`
	Scheme      string       `json:"scheme"`
	Network     string       `json:"network"`
	Payload     ExactPayload `json:"payload"`
}

// VerifyRequest pairs a payment payload with the requirements it must
// satisfy.
type VerifyRequest struct {
	PaymentPayload      PaymentPayload      `json:"paymentPayload"`
	PaymentRequirements PaymentRequirements `json:"paymentRequirements"`
}

// VerifyResponse reports whether a payment payload is acceptable.
type VerifyResponse struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason,omitempty"`
	Payer         string `json:"payer,omitempty"`
}

// SettleRequest is identical in shape to VerifyRequest; settlement
// re-verifies before executing.
type SettleRequest = VerifyRequest

// SettleResponse reports the result of executing a payment.
type SettleResponse struct {
	Success     bool   `json:"success"`
	ErrorReason string `json:"errorReason,omitempty"`
	Transaction string `json:"transaction,omitempty"`
	Network     string `json:"network"`
	Payer       string `json:"payer,omitempty"`
}

// SupportedKind is one accepted (scheme, network) pair.
type SupportedKind struct {
	X402Version int    `json:"x402Version"`
	Scheme      string `json:"scheme"`
	Network     string `json:"network"`
}

// Invalid reasons reported by Verify.
const (
	ReasonUnsupportedScheme  = "unsupported_scheme"
	ReasonUnsupportedNetwork = "unsupported_network"
	ReasonInvalidVersion     = "invalid_x402_version"
	ReasonPayToMismatch      = "pay_to_mismatch"
	ReasonInsufficientValue  = "insufficient_value"
	ReasonNotYetValid        = "authorization_not_yet_valid"
	ReasonExpired            = "authorization_expired"
	ReasonMissingNonce       = "missing_nonce"
	ReasonMalformedValue     = "malformed_value"
)

var (
	// ErrSettlementInFlight signals a concurrent settle of the same
	// payload is still running.
	ErrSettlementInFlight = errors.New("settlement for this payload is in flight")
)
