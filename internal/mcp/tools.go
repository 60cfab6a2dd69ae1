package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
	"github.com/payos-hq/payos-sandbox/internal/ucp/service"
)

// GetQuoteInput is the MCP tool input for pricing a corridor amount.
type GetQuoteInput struct {
	Corridor string  `json:"corridor" jsonschema:"payout corridor (pix, spei or ach)"`
	Amount   float64 `json:"amount" jsonschema:"source amount to convert"`
	Currency string  `json:"currency" jsonschema:"source currency code (USD)"`
}

// GetQuoteResult is the MCP tool output for a priced quote.
type GetQuoteResult struct {
	QuoteID      string  `json:"quote_id" jsonschema:"identifier to lock this quote at token acquisition"`
	Corridor     string  `json:"corridor" jsonschema:"payout corridor"`
	FromAmount   float64 `json:"from_amount" jsonschema:"source amount"`
	FromCurrency string  `json:"from_currency" jsonschema:"source currency"`
	ToAmount     float64 `json:"to_amount" jsonschema:"destination amount after fees"`
	ToCurrency   string  `json:"to_currency" jsonschema:"destination currency"`
	FXRate       float64 `json:"fx_rate" jsonschema:"fixed sandbox exchange rate"`
	Fees         float64 `json:"fees" jsonschema:"total fees in source currency"`
	ExpiresAt    string  `json:"expires_at" jsonschema:"quote expiry timestamp (RFC 3339)"`
}

// RecipientInput mirrors the corridor recipient shapes.
type RecipientInput struct {
	Type          string `json:"type" jsonschema:"recipient rail type matching the corridor"`
	Name          string `json:"name" jsonschema:"recipient legal name"`
	PixKey        string `json:"pix_key,omitempty" jsonschema:"pix key (pix corridor)"`
	PixKeyType    string `json:"pix_key_type,omitempty" jsonschema:"pix key type: email, cpf, cnpj, phone or random"`
	TaxID         string `json:"tax_id,omitempty" jsonschema:"optional tax id (pix corridor)"`
	Clabe         string `json:"clabe,omitempty" jsonschema:"18-digit CLABE (spei corridor)"`
	RFC           string `json:"rfc,omitempty" jsonschema:"optional RFC (spei corridor)"`
	RoutingNumber string `json:"routing_number,omitempty" jsonschema:"9-digit routing number (ach corridor)"`
	AccountNumber string `json:"account_number,omitempty" jsonschema:"account number (ach corridor)"`
}

// AcquireTokenInput is the MCP tool input for minting a settlement token.
type AcquireTokenInput struct {
	Corridor  string                 `json:"corridor" jsonschema:"payout corridor (pix, spei or ach)"`
	Amount    float64                `json:"amount" jsonschema:"source amount to settle"`
	Currency  string                 `json:"currency" jsonschema:"source currency code (USD)"`
	QuoteID   string                 `json:"quote_id,omitempty" jsonschema:"optional quote to lock; omitted means price now"`
	Recipient RecipientInput         `json:"recipient" jsonschema:"payout recipient"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" jsonschema:"opaque metadata echoed on the settlement"`
}

// AcquireTokenResult is the MCP tool output for a minted token.
type AcquireTokenResult struct {
	Token        string         `json:"token" jsonschema:"single-use settlement token"`
	SettlementID string         `json:"settlement_id" jsonschema:"settlement created for this token"`
	Quote        GetQuoteResult `json:"quote" jsonschema:"locked quote"`
	ExpiresAt    string         `json:"expires_at" jsonschema:"token expiry timestamp (RFC 3339)"`
}

// SettleInput is the MCP tool input for redeeming a token.
type SettleInput struct {
	Token          string `json:"token" jsonschema:"settlement token to redeem"`
	IdempotencyKey string `json:"idempotency_key,omitempty" jsonschema:"optional key so retries replay the original settlement"`
}

// SettlementResult is the MCP tool output describing a settlement.
type SettlementResult struct {
	SettlementID        string  `json:"settlement_id" jsonschema:"settlement identifier"`
	Status              string  `json:"status" jsonschema:"created, submitted, processing, completed, failed or expired"`
	Corridor            string  `json:"corridor" jsonschema:"payout corridor"`
	ToAmount            float64 `json:"to_amount" jsonschema:"destination amount"`
	ToCurrency          string  `json:"to_currency" jsonschema:"destination currency"`
	TransferID          string  `json:"transfer_id,omitempty" jsonschema:"set once the settlement completes"`
	FailureReason       string  `json:"failure_reason,omitempty" jsonschema:"set when the settlement fails"`
	EstimatedCompletion string  `json:"estimated_completion,omitempty" jsonschema:"expected finality timestamp (RFC 3339)"`
	CompletedAt         string  `json:"completed_at,omitempty" jsonschema:"finality timestamp (RFC 3339)"`
}

// GetSettlementInput is the MCP tool input for a status read.
type GetSettlementInput struct {
	SettlementID string `json:"settlement_id" jsonschema:"settlement identifier"`
}

// CapabilitiesInput is the MCP tool input for discovery (none).
type CapabilitiesInput struct{}

// CapabilitiesResult is the MCP tool output for discovery.
type CapabilitiesResult struct {
	Mode      string   `json:"mode" jsonschema:"always sandbox"`
	Corridors []string `json:"corridors" jsonschema:"supported payout corridors"`
	Schemes   []string `json:"schemes" jsonschema:"supported x402 schemes"`
	Networks  []string `json:"networks" jsonschema:"supported x402 networks"`
}

// GetQuoteTool defines the MCP tool schema for pricing.
func GetQuoteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ucp_get_quote",
		Description: "Prices a payout corridor conversion at the fixed sandbox FX rate",
	}
}

// AcquireTokenTool defines the MCP tool schema for token acquisition.
func AcquireTokenTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ucp_acquire_token",
		Description: "Acquires a single-use settlement token for a recipient",
	}
}

// SettleTool defines the MCP tool schema for settlement execution.
func SettleTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ucp_settle",
		Description: "Redeems a settlement token and starts deterministic settlement progression",
	}
}

// GetSettlementTool defines the MCP tool schema for status reads.
func GetSettlementTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ucp_get_settlement",
		Description: "Reads the current status of a settlement",
	}
}

// CapabilitiesTool defines the MCP tool schema for discovery.
func CapabilitiesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "payos_capabilities",
		Description: "Lists the corridors, schemes and networks this sandbox supports",
	}
}

// GetQuoteHandler prices a conversion through the quote service.
func GetQuoteHandler(quotes *service.QuoteService) mcp.ToolHandlerFor[GetQuoteInput, GetQuoteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetQuoteInput) (*mcp.CallToolResult, GetQuoteResult, error) {
		quote, err := quotes.CreateQuote(ctx, &domain.QuoteRequest{
			Corridor: input.Corridor,
			Amount:   input.Amount,
			Currency: input.Currency,
		})
		if err != nil {
			return nil, GetQuoteResult{}, fmt.Errorf("quote failed: %w", err)
		}

		return nil, quoteResult(quote), nil
	}
}

// AcquireTokenHandler mints a settlement token through the settlement
// service.
func AcquireTokenHandler(settlements *service.SettlementService) mcp.ToolHandlerFor[AcquireTokenInput, AcquireTokenResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AcquireTokenInput) (*mcp.CallToolResult, AcquireTokenResult, error) {
		token, err := settlements.AcquireToken(ctx, &domain.TokenRequest{
			Corridor: input.Corridor,
			Amount:   input.Amount,
			Currency: input.Currency,
			QuoteID:  input.QuoteID,
			Recipient: domain.Recipient{
				Type:          input.Recipient.Type,
				Name:          input.Recipient.Name,
				PixKey:        input.Recipient.PixKey,
				PixKeyType:    input.Recipient.PixKeyType,
				TaxID:         input.Recipient.TaxID,
				Clabe:         input.Recipient.Clabe,
				RFC:           input.Recipient.RFC,
				RoutingNumber: input.Recipient.RoutingNumber,
				AccountNumber: input.Recipient.AccountNumber,
			},
			Metadata: input.Metadata,
		})
		if err != nil {
			return nil, AcquireTokenResult{}, fmt.Errorf("token acquisition failed: %w", err)
		}

		return nil, AcquireTokenResult{
			Token:        token.Token,
			SettlementID: token.SettlementID,
			Quote:        quoteResult(&token.Quote),
			ExpiresAt:    token.ExpiresAt.Format(time.RFC3339),
		}, nil
	}
}

// SettleHandler redeems a token through the settlement service.
func SettleHandler(settlements *service.SettlementService) mcp.ToolHandlerFor[SettleInput, SettlementResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SettleInput) (*mcp.CallToolResult, SettlementResult, error) {
		settlement, err := settlements.Settle(ctx, &domain.SettleRequest{
			Token:          input.Token,
			IdempotencyKey: input.IdempotencyKey,
		})
		if err != nil {
			return nil, SettlementResult{}, fmt.Errorf("settle failed: %w", err)
		}

		return nil, settlementResult(settlement), nil
	}
}

// GetSettlementHandler reads a settlement's status.
func GetSettlementHandler(settlements *service.SettlementService) mcp.ToolHandlerFor[GetSettlementInput, SettlementResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetSettlementInput) (*mcp.CallToolResult, SettlementResult, error) {
		settlement, err := settlements.GetSettlement(ctx, input.SettlementID)
		if err != nil {
			return nil, SettlementResult{}, fmt.Errorf("settlement lookup failed: %w", err)
		}

		return nil, settlementResult(settlement), nil
	}
}

// CapabilitiesHandler lists sandbox capabilities.
func CapabilitiesHandler() mcp.ToolHandlerFor[CapabilitiesInput, CapabilitiesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ CapabilitiesInput) (*mcp.CallToolResult, CapabilitiesResult, error) {
		corridors := domain.Corridors()
		names := make([]string, 0, len(corridors))
		for _, corridor := range corridors {
			names = append(names, corridor.Name)
		}

		return nil, CapabilitiesResult{
			Mode:      "sandbox",
			Corridors: names,
			Schemes:   []string{"exact"},
			Networks:  []string{"payos-sandbox"},
		}, nil
	}
}

func quoteResult(q *domain.Quote) GetQuoteResult {
	return GetQuoteResult{
		QuoteID:      q.QuoteID,
		Corridor:     q.Corridor,
		FromAmount:   q.FromAmount,
		FromCurrency: q.FromCurrency,
		ToAmount:     q.ToAmount,
		ToCurrency:   q.ToCurrency,
		FXRate:       q.FXRate,
		Fees:         q.Fees,
		ExpiresAt:    q.ExpiresAt.Format(time.RFC3339),
	}
}

func settlementResult(s *domain.Settlement) SettlementResult {
	result := SettlementResult{
		SettlementID:  s.ID,
		Status:        s.Status,
		Corridor:      s.Corridor,
		ToAmount:      s.Quote.ToAmount,
		ToCurrency:    s.Quote.ToCurrency,
		TransferID:    s.TransferID,
		FailureReason: s.FailureReason,
	}
	if s.EstimatedCompletion != nil {
		result.EstimatedCompletion = s.EstimatedCompletion.Format(time.RFC3339)
	}
	if s.CompletedAt != nil {
		result.CompletedAt = s.CompletedAt.Format(time.RFC3339)
	}
	return result
}
