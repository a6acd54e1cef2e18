package persistence

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/metrics"
)

const numShards = 16

// MemoryPools is the in-process pool store. Pools are sharded by the first
// byte of their address to reduce lock contention between quotes.
type MemoryPools struct {
	shards [numShards]poolShard

	dirtyMu sync.Mutex
	dirty   map[solana.PublicKey]struct{}
}

type poolShard struct {
	mu    sync.RWMutex
	pools map[solana.PublicKey]*domain.PoolState
}

func NewMemoryPools() *MemoryPools {
	m := &MemoryPools{dirty: make(map[solana.PublicKey]struct{})}
	for i := 0; i < numShards; i++ {
		m.shards[i].pools = make(map[solana.PublicKey]*domain.PoolState)
	}
	return m
}

func (m *MemoryPools) getShard(key solana.PublicKey) *poolShard {
	return &m.shards[key[0]%numShards]
}

func (m *MemoryPools) markDirty(key solana.PublicKey) {
	m.dirtyMu.Lock()
	m.dirty[key] = struct{}{}
	m.dirtyMu.Unlock()
}

// Pool returns a copy of the pool at address.
func (m *MemoryPools) Pool(_ context.Context, address solana.PublicKey) (*domain.PoolState, error) {
	shard := m.getShard(address)
	shard.mu.RLock()
	p, ok := shard.pools[address]
	shard.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", domain.ErrInvalidPool, address)
	}
	return p.Clone(), nil
}

// ApplySwap credits amountIn of tokenIn to the pool and debits amountOut of
// tokenOut.
func (m *MemoryPools) ApplySwap(_ context.Context, address, tokenIn solana.PublicKey, amountIn *uint256.Int, tokenOut solana.PublicKey, amountOut *uint256.Int) error {
	shard := m.getShard(address)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	p, ok := shard.pools[address]
	if !ok {
		return fmt.Errorf("%w: %s not found", domain.ErrInvalidPool, address)
	}
	i, j := p.IndexOf(tokenIn), p.IndexOf(tokenOut)
	if i < 0 || j < 0 || i == j {
		return fmt.Errorf("%w: pool %s does not trade %s->%s", domain.ErrIncorrectPath, address, tokenIn, tokenOut)
	}
	if p.Balances[j].Lt(amountOut) {
		return fmt.Errorf("%w: pool %s holds %s, owes %s", domain.ErrInsufficientLiquidity, address, p.Balances[j].Dec(), amountOut.Dec())
	}
	in, overflow := new(uint256.Int).AddOverflow(p.Balances[i], amountIn)
	if overflow {
		return domain.ErrArithmeticOverflow
	}
	p.Balances[i] = in
	p.Balances[j] = new(uint256.Int).Sub(p.Balances[j], amountOut)
	p.UpdatedAt = time.Now().Unix()

	m.markDirty(address)
	metrics.PoolUpdates.Inc()
	return nil
}

// Upsert validates and stores a copy of p.
func (m *MemoryPools) Upsert(p *domain.PoolState) error {
	if err := p.Validate(); err != nil {
		return err
	}
	shard := m.getShard(p.Address)
	shard.mu.Lock()
	shard.pools[p.Address] = p.Clone()
	shard.mu.Unlock()

	m.markDirty(p.Address)
	metrics.PoolUpdates.Inc()
	metrics.PoolCount.Set(float64(m.Len()))
	return nil
}

func (m *MemoryPools) Len() int {
	total := 0
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		total += len(m.shards[i].pools)
		m.shards[i].mu.RUnlock()
	}
	return total
}

// All returns copies of every pool ordered by address.
func (m *MemoryPools) All() []*domain.PoolState {
	out := make([]*domain.PoolState, 0, m.Len())
	for i := 0; i < numShards; i++ {
		m.shards[i].mu.RLock()
		for _, p := range m.shards[i].pools {
			out = append(out, p.Clone())
		}
		m.shards[i].mu.RUnlock()
	}
	sort.Slice(out, func(a, b int) bool {
		return bytes.Compare(out[a].Address[:], out[b].Address[:]) < 0
	})
	return out
}

// TakeDirty returns copies of the pools changed since the last call and
// clears the change set.
func (m *MemoryPools) TakeDirty() []*domain.PoolState {
	m.dirtyMu.Lock()
	keys := make([]solana.PublicKey, 0, len(m.dirty))
	for k := range m.dirty {
		keys = append(keys, k)
	}
	m.dirty = make(map[solana.PublicKey]struct{})
	m.dirtyMu.Unlock()

	out := make([]*domain.PoolState, 0, len(keys))
	for _, k := range keys {
		shard := m.getShard(k)
		shard.mu.RLock()
		if p, ok := shard.pools[k]; ok {
			out = append(out, p.Clone())
		}
		shard.mu.RUnlock()
	}
	return out
}

// Requeue marks pools as changed again, used when persisting them failed.
func (m *MemoryPools) Requeue(pools []*domain.PoolState) {
	for _, p := range pools {
		m.markDirty(p.Address)
	}
}

// Snapshot captures every pool and returns a function that restores them.
func (m *MemoryPools) Snapshot() func() {
	saved := m.All()
	return func() {
		for i := 0; i < numShards; i++ {
			m.shards[i].mu.Lock()
			m.shards[i].pools = make(map[solana.PublicKey]*domain.PoolState)
			m.shards[i].mu.Unlock()
		}
		for _, p := range saved {
			shard := m.getShard(p.Address)
			shard.mu.Lock()
			shard.pools[p.Address] = p
			shard.mu.Unlock()
			m.markDirty(p.Address)
		}
		metrics.PoolCount.Set(float64(len(saved)))
	}
}
