package simulation

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
	"github.com/payos-hq/payos-sandbox/internal/ucp/repository"
)

// Archiver persists terminal settlements for durable audit. The engine
// runs fine without one.
type Archiver interface {
	Archive(ctx context.Context, s *domain.Settlement) error
}

// Notifier delivers terminal settlement events to an external receiver.
type Notifier interface {
	Notify(ctx context.Context, s *domain.Settlement)
}

// Engine emulates settlement finality without a blockchain. It scans
// active settlements on a fixed tick and advances them on a
// deterministic clock: submitted -> processing after SubmitDelay,
// processing -> completed/failed after SettleDelay, with failures
// injected by the sandbox rules.
type Engine struct {
	settlements *repository.SettlementRepository
	archiver    Archiver
	notifier    Notifier
	submitDelay time.Duration
	settleDelay time.Duration
	tick        time.Duration
}

// NewEngine creates a new settlement progression Engine
func NewEngine(
	settlements *repository.SettlementRepository,
	archiver Archiver,
	notifier Notifier,
	submitDelay, settleDelay time.Duration,
) *Engine {
	return &Engine{
		settlements: settlements,
		archiver:    archiver,
		notifier:    notifier,
		submitDelay: submitDelay,
		settleDelay: settleDelay,
		tick:        50 * time.Millisecond,
	}
}

// Run drives settlement progression until the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	log.Printf("[engine] settlement progression started (submit=%s settle=%s)", e.submitDelay, e.settleDelay)

	for {
		select {
		case <-ctx.Done():
			log.Println("[engine] settlement progression stopped")
			return
		case <-ticker.C:
			e.Step(ctx, time.Now().UTC())
		}
	}
}

// Step advances every active settlement that is due at the given time.
// Exposed separately from Run so tests can drive the clock directly.
func (e *Engine) Step(ctx context.Context, now time.Time) {
	ids, err := e.settlements.ListActive(ctx)
	if err != nil {
		log.Printf("[engine] failed to list active settlements: %v", err)
		return
	}

	for _, id := range ids {
		if err := e.advance(ctx, id, now); err != nil {
			log.Printf("[engine] failed to advance settlement %s: %v", id, err)
		}
	}
}

func (e *Engine) advance(ctx context.Context, id string, now time.Time) error {
	s, err := e.settlements.Get(ctx, id)
	if err != nil {
		return err
	}

	switch s.Status {
	case domain.StatusSubmitted:
		if s.SubmittedAt == nil || now.Sub(*s.SubmittedAt) < e.submitDelay {
			return nil
		}
		if err := s.Transition(domain.StatusProcessing); err != nil {
			return err
		}
		return e.settlements.Update(ctx, s)

	case domain.StatusProcessing:
		if s.SubmittedAt == nil || now.Sub(*s.SubmittedAt) < e.submitDelay+e.settleDelay {
			return nil
		}
		return e.finalize(ctx, s, now)
	}

	// created settlements wait for token redemption; terminal ones are
	// removed from the active set by Update.
	return nil
}

func (e *Engine) finalize(ctx context.Context, s *domain.Settlement, now time.Time) error {
	if reason := FailureReason(s); reason != "" {
		if err := s.Transition(domain.StatusFailed); err != nil {
			return err
		}
		s.FailureReason = reason
	} else {
		if err := s.Transition(domain.StatusCompleted); err != nil {
			return err
		}
		s.TransferID = "tr_" + uuid.New().String()
	}
	s.CompletedAt = &now

	if err := e.settlements.Update(ctx, s); err != nil {
		return err
	}

	log.Printf("[engine] settlement %s finalized status=%s", s.ID, s.Status)

	if e.archiver != nil {
		if err := e.archiver.Archive(ctx, s); err != nil {
			log.Printf("[engine] failed to archive settlement %s: %v", s.ID, err)
		}
	}

	if e.notifier != nil {
		e.notifier.Notify(ctx, s)
	}

	return nil
}
