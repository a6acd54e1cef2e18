package exchange

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

// inProcess is shared by the families priced from PoolStore balances.
type inProcess struct {
	family domain.VenueFamily
	pools  PoolStore
	settle Settlement
}

func (b *inProcess) Family() domain.VenueFamily {
	return b.family
}

// load returns the pool and the positions of tokenIn and tokenOut in it.
func (b *inProcess) load(ctx context.Context, address, tokenIn, tokenOut solana.PublicKey) (*domain.PoolState, int, int, error) {
	if b.pools == nil {
		return nil, 0, 0, fmt.Errorf("%w: no pool store for %s venue", domain.ErrInvalidPool, b.family)
	}
	st, err := b.pools.Pool(ctx, address)
	if err != nil {
		return nil, 0, 0, err
	}
	if st.Family != b.family {
		return nil, 0, 0, fmt.Errorf("%w: pool %s is %s, venue is %s", domain.ErrInvalidPool, address, st.Family, b.family)
	}
	i, j := st.IndexOf(tokenIn), st.IndexOf(tokenOut)
	if i < 0 || j < 0 || i == j {
		return nil, 0, 0, fmt.Errorf("%w: pool %s does not trade %s->%s", domain.ErrIncorrectPath, address, tokenIn, tokenOut)
	}
	return st, i, j, nil
}

// execute recomputes the output, enforces the minimum and applies the swap.
func (b *inProcess) execute(ctx context.Context, p ExecuteParams, pool solana.PublicKey, amountOut *uint256.Int) (*uint256.Int, error) {
	if p.MinAmountOut != nil && amountOut.Lt(p.MinAmountOut) {
		return nil, fmt.Errorf("%w: got %s, min %s", domain.ErrSlippageToleranceExceeded, amountOut.Dec(), p.MinAmountOut.Dec())
	}
	if b.settle != nil {
		if err := b.settle.Settle(ctx, p.Payer, p.TokenIn, p.AmountIn, p.Recipient, p.TokenOut, amountOut); err != nil {
			return nil, err
		}
	}
	if err := b.pools.ApplySwap(ctx, pool, p.TokenIn, p.AmountIn, p.TokenOut, amountOut); err != nil {
		return nil, err
	}
	return amountOut, nil
}
