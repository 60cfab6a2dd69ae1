package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCorridor(t *testing.T) {
	t.Run("returns known corridors", func(t *testing.T) {
		pix, ok := GetCorridor("pix")
		require.True(t, ok)
		assert.Equal(t, "USD", pix.FromCurrency)
		assert.Equal(t, "BRL", pix.ToCurrency)

		spei, ok := GetCorridor("spei")
		require.True(t, ok)
		assert.Equal(t, "MXN", spei.ToCurrency)

		ach, ok := GetCorridor("ach")
		require.True(t, ok)
		assert.Equal(t, "USD", ach.ToCurrency)
	})

	t.Run("rejects unknown corridor", func(t *testing.T) {
		_, ok := GetCorridor("swift")
		assert.False(t, ok)
	})
}

func TestCorridorPricing(t *testing.T) {
	pix, _ := GetCorridor("pix")

	t.Run("fee is fixed plus percent, rounded to cents", func(t *testing.T) {
		// 0.50 + 1% of 100 = 1.50
		assert.Equal(t, 1.50, pix.Fee(100))
	})

	t.Run("conversion applies fee then fixed rate", func(t *testing.T) {
		// (100 - 1.50) * 5.20 = 512.20
		assert.Equal(t, 512.20, pix.Convert(100))
	})

	t.Run("same input always prices the same", func(t *testing.T) {
		first := pix.Convert(250.75)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, pix.Convert(250.75))
		}
	})

	t.Run("range limits", func(t *testing.T) {
		assert.True(t, pix.InRange(1))
		assert.True(t, pix.InRange(10000))
		assert.False(t, pix.InRange(0.5))
		assert.False(t, pix.InRange(10001))
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, Round2(1.006))
	assert.Equal(t, 1.0, Round2(1.0049))
	assert.Equal(t, 512.20, Round2(512.2))
}

func TestStatusMachine(t *testing.T) {
	t.Run("terminal states", func(t *testing.T) {
		assert.True(t, IsTerminal(StatusCompleted))
		assert.True(t, IsTerminal(StatusFailed))
		assert.True(t, IsTerminal(StatusExpired))
		assert.False(t, IsTerminal(StatusProcessing))
	})

	t.Run("allowed transitions", func(t *testing.T) {
		assert.True(t, CanTransition(StatusCreated, StatusSubmitted))
		assert.True(t, CanTransition(StatusCreated, StatusExpired))
		assert.True(t, CanTransition(StatusSubmitted, StatusProcessing))
		assert.True(t, CanTransition(StatusProcessing, StatusCompleted))
		assert.True(t, CanTransition(StatusProcessing, StatusFailed))
	})

	t.Run("terminal states are frozen", func(t *testing.T) {
		assert.False(t, CanTransition(StatusCompleted, StatusFailed))
		assert.False(t, CanTransition(StatusFailed, StatusSubmitted))
		assert.False(t, CanTransition(StatusExpired, StatusSubmitted))
	})

	t.Run("no skipping processing", func(t *testing.T) {
		assert.False(t, CanTransition(StatusCreated, StatusCompleted))
		assert.False(t, CanTransition(StatusSubmitted, StatusCompleted))
	})
}

func TestTransition(t *testing.T) {
	t.Run("moves through the machine", func(t *testing.T) {
		s := &Settlement{Status: StatusCreated}
		require.NoError(t, s.Transition(StatusSubmitted))
		require.NoError(t, s.Transition(StatusProcessing))
		require.NoError(t, s.Transition(StatusCompleted))
		assert.Equal(t, StatusCompleted, s.Status)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		s := &Settlement{Status: StatusCreated}
		assert.ErrorIs(t, s.Transition("refunded"), ErrInvalidStatus)
		assert.Equal(t, StatusCreated, s.Status)
	})

	t.Run("rejects leaving a terminal status", func(t *testing.T) {
		s := &Settlement{Status: StatusFailed}
		assert.ErrorIs(t, s.Transition(StatusSubmitted), ErrInvalidTransition)
		assert.Equal(t, StatusFailed, s.Status)
	})
}

func TestRedacted(t *testing.T) {
	s := &Settlement{ID: "stl_1", TokenID: "stk_secret", Status: StatusCreated}
	r := s.Redacted()

	assert.Empty(t, r.TokenID)
	assert.Equal(t, s.ID, r.ID)
	// The stored record keeps its binding.
	assert.Equal(t, "stk_secret", s.TokenID)
}
