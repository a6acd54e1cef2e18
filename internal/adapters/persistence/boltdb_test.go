package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

func TestStoragePoolsAndReceipts(t *testing.T) {
	s, err := NewStorage(filepath.Join(t.TempDir(), "pools.db"))
	require.NoError(t, err)
	defer s.Close()

	one := pool(key(1, 1), 10, 20)
	one.UpdatedAt = 1_700_000_000
	require.NoError(t, s.SavePool(one))
	require.NoError(t, s.SavePoolBatch([]*domain.PoolState{pool(key(2, 2), 1, 2), pool(key(3, 3), 3, 4)}))

	n, err := s.GetPoolCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	loaded, err := s.LoadAllPools()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	for _, p := range loaded {
		if p.Address == one.Address {
			assert.Equal(t, one, p)
		}
	}

	ctx := context.Background()
	first := domain.ExecutionReceipt{ID: "b", PlanHash: "00ff", AmountIn: "1", ExecutedAt: time.Unix(100, 0).UTC()}
	second := domain.ExecutionReceipt{ID: "a", PlanHash: "00ff", AmountIn: "2", ExecutedAt: time.Unix(200, 0).UTC()}
	require.NoError(t, s.Record(ctx, second))
	require.NoError(t, s.Record(ctx, first))

	receipts, err := s.ListReceipts()
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "b", receipts[0].ID)
	assert.Equal(t, "a", receipts[1].ID)
}
