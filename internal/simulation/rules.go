package simulation

import (
	"math"
	"strings"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
)

// Failure reasons reported on injected settlement failures.
const (
	ReasonInsufficientLiquidity = "insufficient_liquidity"
	ReasonComplianceRejected    = "compliance_rejected"
	ReasonForcedFailure         = "forced_failure"
)

// FailureReason applies the sandbox failure-injection conventions to a
// settlement. Returns the failure reason, or "" when the settlement
// should complete. The rules are deterministic so a test that provokes
// a failure provokes it every run:
//
//   - source amounts with cents .99 fail with insufficient_liquidity
//   - recipients whose rail address starts with "blocked" fail with
//     compliance_rejected
//   - metadata sandbox_outcome="fail" forces forced_failure
func FailureReason(s *domain.Settlement) string {
	if outcome, ok := s.Metadata["sandbox_outcome"].(string); ok && outcome == "fail" {
		return ReasonForcedFailure
	}

	if strings.HasPrefix(strings.ToLower(s.Recipient.DestinationKey()), "blocked") {
		return ReasonComplianceRejected
	}

	cents := math.Round(s.Quote.FromAmount*100) - math.Floor(s.Quote.FromAmount)*100
	if int(cents) == 99 {
		return ReasonInsufficientLiquidity
	}

	return ""
}
