package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
)

// WebhookNotifier POSTs terminal settlement events to a configured
// receiver. The shared secret rides in a header; receivers should
// compare it in constant time.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookNotifier creates a new WebhookNotifier
func NewWebhookNotifier(url, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// SettlementEvent is the webhook payload for a terminal settlement.
type SettlementEvent struct {
	Event           string             `json:"event"`
	SettlementID    string             `json:"settlement_id"`
	Status          string             `json:"status"`
	TransferID      string             `json:"transfer_id,omitempty"`
	FailureReason   string             `json:"failure_reason,omitempty"`
	Settlement      *domain.Settlement `json:"settlement"`
	TimestampUnixMs int64              `json:"timestamp"`
}

// Notify delivers a settlement event. Delivery is best effort; failures
// are logged, not retried, since the settlement record itself stays
// pollable.
func (n *WebhookNotifier) Notify(ctx context.Context, s *domain.Settlement) {
	event := SettlementEvent{
		Event:           "settlement." + s.Status,
		SettlementID:    s.ID,
		Status:          s.Status,
		TransferID:      s.TransferID,
		FailureReason:   s.FailureReason,
		Settlement:      s,
		TimestampUnixMs: time.Now().UnixMilli(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("[webhook] failed to marshal event for %s: %v", s.ID, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		log.Printf("[webhook] failed to build request for %s: %v", s.ID, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set("X-Payos-Callback-Secret", n.secret)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("[webhook] delivery failed for %s: %v", s.ID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("[webhook] receiver returned %d for %s", resp.StatusCode, s.ID)
	}
}
