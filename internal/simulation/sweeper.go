package simulation

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
	"github.com/payos-hq/payos-sandbox/internal/ucp/repository"
)

// Sweeper expires settlements whose tokens were never redeemed. Quotes
// and tokens expire on their own via redis TTLs; the settlement records
// backing them need this sweep to reach a terminal status.
type Sweeper struct {
	settlements *repository.SettlementRepository
	tokenTTL    time.Duration
	cron        *cron.Cron
}

// NewSweeper creates a new Sweeper
func NewSweeper(settlements *repository.SettlementRepository, tokenTTL time.Duration) *Sweeper {
	return &Sweeper{
		settlements: settlements,
		tokenTTL:    tokenTTL,
		cron:        cron.New(cron.WithSeconds()),
	}
}

// Start schedules the expiry sweep every 30 seconds.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("*/30 * * * * *", func() {
		s.Sweep(ctx, time.Now().UTC())
	})
	if err != nil {
		return err
	}

	log.Println("[sweeper] expiry sweep scheduled (every 30s)")
	s.cron.Start()
	return nil
}

// Stop halts the sweep schedule.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Sweep expires created settlements older than the token TTL. Exposed
// separately from the schedule so tests can drive the clock directly.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) {
	ids, err := s.settlements.ListActive(ctx)
	if err != nil {
		log.Printf("[sweeper] failed to list active settlements: %v", err)
		return
	}

	for _, id := range ids {
		settlement, err := s.settlements.Get(ctx, id)
		if err != nil {
			continue
		}

		if settlement.Status != domain.StatusCreated {
			continue
		}
		if now.Sub(settlement.CreatedAt) < s.tokenTTL {
			continue
		}

		if err := settlement.Transition(domain.StatusExpired); err != nil {
			continue
		}
		if err := s.settlements.Update(ctx, settlement); err != nil {
			log.Printf("[sweeper] failed to expire settlement %s: %v", id, err)
			continue
		}
		log.Printf("[sweeper] settlement %s expired (token never redeemed)", id)
	}
}
