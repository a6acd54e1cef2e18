package receipts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

func receipt(id string, at int64) domain.ExecutionReceipt {
	return domain.ExecutionReceipt{
		ID:           id,
		PlanHash:     "3f2a9c",
		TokenIn:      "native",
		TokenOut:     "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		AmountIn:     "1000000000",
		AmountOut:    "123456789012345678901234567890",
		MinAmountOut: "0",
		Payer:        "payer",
		Recipient:    "recipient",
		ExecutedAt:   time.Unix(at, 0).UTC(),
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Record(ctx, receipt("b", 20)))
	require.NoError(t, m.Record(ctx, receipt("a", 10)))
	assert.ErrorIs(t, m.Record(ctx, receipt("a", 30)), ErrDuplicateReceipt)

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, receipt("a", 10), got)

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}

func TestObservedPassesThrough(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	o := NewObserved(m)
	assert.Equal(t, "memory", o.Name())

	require.NoError(t, o.Record(ctx, receipt("x", 1)))
	assert.ErrorIs(t, o.Record(ctx, receipt("x", 1)), ErrDuplicateReceipt)
	assert.Len(t, m.List(), 1)

	assert.Equal(t, "noop", NewObserved(nil).Name())
	assert.NoError(t, NewObserved(nil).Record(ctx, receipt("y", 1)))
}
