package service

import (
	"context"
	"strings"
	"time"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
	"github.com/payos-hq/payos-sandbox/internal/ucp/repository"
)

// QuoteService prices corridor conversions with the fixed sandbox FX
// table.
type QuoteService struct {
	quoteRepo *repository.QuoteRepository
	quoteTTL  time.Duration
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(quoteRepo *repository.QuoteRepository, quoteTTL time.Duration) *QuoteService {
	return &QuoteService{
		quoteRepo: quoteRepo,
		quoteTTL:  quoteTTL,
	}
}

// CreateQuote prices a conversion and stores the quote for redemption.
func (s *QuoteService) CreateQuote(ctx context.Context, req *domain.QuoteRequest) (*domain.Quote, error) {
	corridor, ok := domain.GetCorridor(strings.ToLower(req.Corridor))
	if !ok {
		return nil, domain.ErrUnsupportedCorridor
	}

	if !strings.EqualFold(req.Currency, corridor.FromCurrency) {
		return nil, domain.ErrUnsupportedCorridor
	}

	if !corridor.InRange(req.Amount) {
		return nil, domain.ErrAmountOutOfRange
	}

	quote := &domain.Quote{
		Corridor:     corridor.Name,
		FromAmount:   domain.Round2(req.Amount),
		FromCurrency: corridor.FromCurrency,
		ToAmount:     corridor.Convert(req.Amount),
		ToCurrency:   corridor.ToCurrency,
		FXRate:       corridor.FXRate,
		Fees:         corridor.Fee(req.Amount),
	}

	if err := s.quoteRepo.Create(ctx, quote, s.quoteTTL); err != nil {
		return nil, err
	}

	return quote, nil
}

// GetQuote retrieves a stored quote, reporting expiry distinctly from
// absence.
func (s *QuoteService) GetQuote(ctx context.Context, quoteID string) (*domain.Quote, error) {
	quote, err := s.quoteRepo.Get(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if time.Now().After(quote.ExpiresAt) {
		return nil, domain.ErrQuoteExpired
	}

	return quote, nil
}
