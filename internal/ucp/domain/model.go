package domain

import "time"

// Quote is a priced corridor conversion, redeemable until ExpiresAt.
type Quote struct {
	QuoteID      string    `json:"quote_id"`
	Corridor     string    `json:"corridor"`
	FromAmount   float64   `json:"from_amount"`
	FromCurrency string    `json:"from_currency"`
	ToAmount     float64   `json:"to_amount"`
	ToCurrency   string    `json:"to_currency"`
	FXRate       float64   `json:"fx_rate"`
	Fees         float64   `json:"fees"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Recipient identifies the payout destination for a corridor. Which
// fields are required depends on the corridor type.
type Recipient struct {
	Type string `json:"type"`

	// Pix
	PixKey     string `json:"pix_key,omitempty"`
	PixKeyType string `json:"pix_key_type,omitempty"`
	TaxID      string `json:"tax_id,omitempty"`

	// SPEI
	Clabe string `json:"clabe,omitempty"`
	RFC   string `json:"rfc,omitempty"`

	// ACH
	RoutingNumber string `json:"routing_number,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`

	Name string `json:"name"`
}

// SettlementToken is a single-use grant to execute one settlement at a
// locked quote.
type SettlementToken struct {
	Token        string    `json:"token"`
	SettlementID string    `json:"settlement_id"`
	Corridor     string    `json:"corridor"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Quote        Quote     `json:"quote"`
	Recipient    Recipient `json:"recipient"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Used         bool      `json:"used"`
}

// Settlement tracks one payout from token acquisition to finality.
// TokenID binds the settlement to the token that may redeem it; API
// responses strip it via Redacted.
type Settlement struct {
	ID                  string                 `json:"id"`
	TokenID             string                 `json:"token_id,omitempty"`
	Corridor            string                 `json:"corridor"`
	Status              string                 `json:"status"`
	Quote               Quote                  `json:"quote"`
	Recipient           Recipient              `json:"recipient"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
	IdempotencyKey      string                 `json:"idempotency_key,omitempty"`
	TransferID          string                 `json:"transfer_id,omitempty"`
	FailureReason       string                 `json:"failure_reason,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
	SubmittedAt         *time.Time             `json:"submitted_at,omitempty"`
	EstimatedCompletion *time.Time             `json:"estimated_completion,omitempty"`
	CompletedAt         *time.Time             `json:"completed_at,omitempty"`
}

// Settlement status constants
const (
	StatusCreated    = "created"
	StatusSubmitted  = "submitted"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusExpired    = "expired"
)

// IsTerminal reports whether a settlement status admits no further
// transitions.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed || status == StatusExpired
}

// ValidStatus reports whether status is a known settlement status.
func ValidStatus(status string) bool {
	switch status {
	case StatusCreated, StatusSubmitted, StatusProcessing, StatusCompleted, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// Redacted returns a copy of the settlement safe for API responses,
// with the token binding stripped.
func (s *Settlement) Redacted() *Settlement {
	c := *s
	c.TokenID = ""
	return &c
}

// Transition moves the settlement to a new status, enforcing the
// machine. Terminal states are immutable.
func (s *Settlement) Transition(to string) error {
	if !ValidStatus(to) {
		return ErrInvalidStatus
	}
	if !CanTransition(s.Status, to) {
		return ErrInvalidTransition
	}
	s.Status = to
	return nil
}

// CanTransition reports whether a settlement may move from one status to
// another. Terminal states are frozen.
func CanTransition(from, to string) bool {
	switch from {
	case StatusCreated:
		return to == StatusSubmitted || to == StatusExpired
	case StatusSubmitted:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	}
	return false
}

// QuoteRequest is the input to pricing a corridor conversion.
type QuoteRequest struct {
	Corridor string  `json:"corridor"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// TokenRequest is the input to acquiring a settlement token.
type TokenRequest struct {
	Corridor  string                 `json:"corridor"`
	Amount    float64                `json:"amount"`
	Currency  string                 `json:"currency"`
	QuoteID   string                 `json:"quote_id,omitempty"`
	Recipient Recipient              `json:"recipient"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// SettleRequest is the input to redeeming a settlement token.
type SettleRequest struct {
	Token          string `json:"token"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}
