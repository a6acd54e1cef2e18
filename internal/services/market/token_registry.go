package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/metrics"
)

type DecimalsFetcher interface {
	FetchDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
}

// RPCDecimalsFetcher reads decimals from the SPL mint account.
type RPCDecimalsFetcher struct {
	client  *rpc.Client
	timeout time.Duration
}

func NewRPCDecimalsFetcher(client *rpc.Client) *RPCDecimalsFetcher {
	return &RPCDecimalsFetcher{client: client, timeout: 10 * time.Second}
}

func (f *RPCDecimalsFetcher) FetchDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	info, err := f.client.GetAccountInfo(timeoutCtx, mint)
	if err != nil {
		return 0, err
	}
	if info == nil || info.Value == nil {
		return 0, fmt.Errorf("%w: mint %s not found", domain.ErrUnknownToken, mint)
	}
	var mintState token.Mint
	if err := bin.NewBinDecoder(info.Value.Data.GetBinary()).Decode(&mintState); err != nil {
		return 0, fmt.Errorf("%w: decode mint %s: %v", domain.ErrUnknownToken, mint, err)
	}
	return mintState.Decimals, nil
}

// TokenRegistry resolves token decimals from static entries, then an LRU of
// fetched values, then the fetcher.
type TokenRegistry struct {
	mu      sync.RWMutex
	static  map[solana.PublicKey]uint8
	cache   *BoundedLRUCache[solana.PublicKey, uint8]
	fetcher DecimalsFetcher
}

func NewTokenRegistry(cacheSize int, fetcher DecimalsFetcher) *TokenRegistry {
	r := &TokenRegistry{
		static:  make(map[solana.PublicKey]uint8),
		cache:   NewBoundedLRUCache[solana.PublicKey, uint8](cacheSize),
		fetcher: fetcher,
	}
	r.static[domain.WrappedNativeMint] = domain.NativeDecimals
	return r
}

func (r *TokenRegistry) SetDecimals(mint solana.PublicKey, decimals uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.static[domain.WrapIfNative(mint)] = decimals
}

func (r *TokenRegistry) Decimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	mint = domain.WrapIfNative(mint)

	r.mu.RLock()
	d, ok := r.static[mint]
	r.mu.RUnlock()
	if ok {
		return d, nil
	}
	if d, ok := r.cache.Get(mint); ok {
		return d, nil
	}
	if r.fetcher == nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownToken, mint)
	}
	d, err := r.fetcher.FetchDecimals(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrUnknownToken, mint, err)
	}
	r.cache.Set(mint, d)
	metrics.DecimalsCacheSize.Set(float64(r.cache.Size()))
	return d, nil
}
