package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
	"github.com/payos-hq/payos-sandbox/internal/ucp/repository"
)

// ArchiveReader reads settlements archived out of the hot store.
type ArchiveReader interface {
	GetArchived(ctx context.Context, settlementID string) (*domain.Settlement, error)
}

// SettlementService handles token acquisition and settlement execution.
type SettlementService struct {
	quotes      *QuoteService
	tokenRepo   *repository.TokenRepository
	settlements *repository.SettlementRepository
	archive     ArchiveReader
	tokenTTL    time.Duration
	settleDelay time.Duration
	submitDelay time.Duration
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	quotes *QuoteService,
	tokenRepo *repository.TokenRepository,
	settlements *repository.SettlementRepository,
	tokenTTL, submitDelay, settleDelay time.Duration,
) *SettlementService {
	return &SettlementService{
		quotes:      quotes,
		tokenRepo:   tokenRepo,
		settlements: settlements,
		tokenTTL:    tokenTTL,
		submitDelay: submitDelay,
		settleDelay: settleDelay,
	}
}

// SetArchive installs a fallback reader for settlements that have aged
// out of redis into the durable ledger.
func (s *SettlementService) SetArchive(archive ArchiveReader) {
	s.archive = archive
}

// AcquireToken validates the recipient, locks a quote, and mints a
// single-use settlement token with its settlement record in "created".
func (s *SettlementService) AcquireToken(ctx context.Context, req *domain.TokenRequest) (*domain.SettlementToken, error) {
	corridorName := strings.ToLower(req.Corridor)

	if err := domain.ValidateRecipient(corridorName, req.Recipient); err != nil {
		return nil, err
	}

	// Reuse a referenced quote if it is still live; otherwise price now
	// at the locked sandbox rate.
	var quote *domain.Quote
	var err error
	if req.QuoteID != "" {
		quote, err = s.quotes.GetQuote(ctx, req.QuoteID)
		if err != nil {
			return nil, err
		}
		if quote.Corridor != corridorName || quote.FromAmount != domain.Round2(req.Amount) {
			return nil, domain.ErrQuoteNotFound
		}
	} else {
		quote, err = s.quotes.CreateQuote(ctx, &domain.QuoteRequest{
			Corridor: corridorName,
			Amount:   req.Amount,
			Currency: req.Currency,
		})
		if err != nil {
			return nil, err
		}
	}

	settlement := &domain.Settlement{
		Corridor:  corridorName,
		Status:    domain.StatusCreated,
		Quote:     *quote,
		Recipient: req.Recipient,
		Metadata:  req.Metadata,
	}
	if settlement.Metadata == nil {
		settlement.Metadata = make(map[string]interface{})
	}
	if err := s.settlements.Create(ctx, settlement); err != nil {
		return nil, err
	}

	token := &domain.SettlementToken{
		SettlementID: settlement.ID,
		Corridor:     corridorName,
		Amount:       quote.FromAmount,
		Currency:     quote.FromCurrency,
		Quote:        *quote,
		Recipient:    req.Recipient,
	}
	if err := s.tokenRepo.Create(ctx, token, s.tokenTTL); err != nil {
		return nil, err
	}

	settlement.TokenID = token.Token
	if err := s.settlements.Update(ctx, settlement); err != nil {
		return nil, err
	}

	return token, nil
}

// Settle redeems a settlement token. The token is single use; an
// idempotency key replays the original settlement instead of minting
// a duplicate.
func (s *SettlementService) Settle(ctx context.Context, req *domain.SettleRequest) (*domain.Settlement, error) {
	token, err := s.tokenRepo.Get(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	// Idempotent replay: the same key against the same token returns the
	// original settlement regardless of its current status.
	freshClaim := false
	if req.IdempotencyKey != "" {
		boundID, fresh, err := s.settlements.ClaimIdempotencyKey(ctx, req.IdempotencyKey, token.SettlementID)
		if err != nil {
			return nil, err
		}
		if !fresh {
			if boundID != token.SettlementID {
				return nil, domain.ErrIdempotencyConflict
			}
			return s.settlements.Get(ctx, boundID)
		}
		freshClaim = true
	}

	// A failed redemption must not keep the key bound, or the retry
	// would replay a settlement that never submitted.
	releaseOnError := func() {
		if freshClaim {
			_ = s.settlements.ReleaseIdempotencyKey(ctx, req.IdempotencyKey)
		}
	}

	if time.Now().After(token.ExpiresAt) {
		releaseOnError()
		return nil, s.expireSettlement(ctx, token)
	}

	if _, err := s.tokenRepo.MarkUsed(ctx, req.Token); err != nil {
		releaseOnError()
		return nil, err
	}

	settlement, err := s.settlements.Get(ctx, token.SettlementID)
	if err != nil {
		// Claims succeeded but the settlement is gone; release so the
		// caller can retry once state is consistent again.
		_ = s.tokenRepo.ReleaseClaim(ctx, req.Token)
		releaseOnError()
		return nil, err
	}

	if err := settlement.Transition(domain.StatusSubmitted); err != nil {
		_ = s.tokenRepo.ReleaseClaim(ctx, req.Token)
		releaseOnError()
		return nil, err
	}

	now := time.Now().UTC()
	estimated := now.Add(s.submitDelay + s.settleDelay)

	settlement.IdempotencyKey = req.IdempotencyKey
	settlement.SubmittedAt = &now
	settlement.EstimatedCompletion = &estimated

	if err := s.settlements.Update(ctx, settlement); err != nil {
		return nil, err
	}

	return settlement, nil
}

// GetSettlement retrieves a settlement by its ID, falling back to the
// archive for settlements that have aged out of the hot store.
func (s *SettlementService) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	settlement, err := s.settlements.Get(ctx, id)
	if errors.Is(err, domain.ErrSettlementNotFound) && s.archive != nil {
		return s.archive.GetArchived(ctx, id)
	}
	return settlement, err
}

// expireSettlement marks the settlement behind an expired token and
// reports the expiry to the caller.
func (s *SettlementService) expireSettlement(ctx context.Context, token *domain.SettlementToken) error {
	settlement, err := s.settlements.Get(ctx, token.SettlementID)
	if err == nil && settlement.Transition(domain.StatusExpired) == nil {
		_ = s.settlements.Update(ctx, settlement)
	}
	return domain.ErrTokenExpired
}
