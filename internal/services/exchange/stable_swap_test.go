package exchange

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/services/wad"
)

func tokens(n uint64, decimals uint8) *uint256.Int {
	p, err := wad.Pow10(decimals)
	if err != nil {
		panic(err)
	}
	return new(uint256.Int).Mul(uint256.NewInt(n), p)
}

func TestStableInvariantBalancedPool(t *testing.T) {
	x := tokens(1_000_000, 18)
	d, err := StableInvariant(100, []*uint256.Int{x, x})
	require.NoError(t, err)

	sum := new(uint256.Int).Add(x, x)
	diff := new(uint256.Int)
	if d.Gt(sum) {
		diff.Sub(d, sum)
	} else {
		diff.Sub(sum, d)
	}
	assert.True(t, diff.Cmp(uint256.NewInt(2)) <= 0, "D=%s sum=%s", d.Dec(), sum.Dec())

	_, err = StableInvariant(0, []*uint256.Int{x, x})
	assert.ErrorIs(t, err, domain.ErrInvalidPool)

	zero, err := StableInvariant(100, []*uint256.Int{new(uint256.Int), new(uint256.Int)})
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestStableSwapAdapterQuotes(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		decA, decB uint8
	}{
		{"same decimals", 6, 6},
		{"mixed decimals", 6, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := twoTokenPool(domain.FamilyStableSwap, tokens(1_000_000, tt.decA), tokens(1_000_000, tt.decB), tt.decA, tt.decB)
			a := NewStableSwapAdapter(newMemStore(pool), nil)
			data := mustEncode(StableSwapData{Pool: poolP, IndexIn: 0, IndexOut: 1})

			in := tokens(1, tt.decA)
			out, err := a.QuoteForward(ctx, data, tokA, tokB, in)
			require.NoError(t, err)

			oneOut := tokens(1, tt.decB)
			floor := new(uint256.Int).Div(new(uint256.Int).Mul(oneOut, uint256.NewInt(999)), uint256.NewInt(1000))
			assert.False(t, out.Gt(oneOut), "out %s", out.Dec())
			assert.True(t, out.Gt(floor), "out %s", out.Dec())

			need, err := a.QuoteReverse(ctx, data, tokA, tokB, out)
			require.NoError(t, err)
			back, err := a.QuoteForward(ctx, data, tokA, tokB, need)
			require.NoError(t, err)
			assert.False(t, back.Lt(out), "reverse %s gives %s < %s", need.Dec(), back.Dec(), out.Dec())
		})
	}
}

func TestStableSwapFeeReducesOutput(t *testing.T) {
	ctx := context.Background()
	pool := twoTokenPool(domain.FamilyStableSwap, tokens(1_000_000, 6), tokens(1_000_000, 6), 6, 6)
	a := NewStableSwapAdapter(newMemStore(pool), nil)

	noFee, err := a.QuoteForward(ctx, mustEncode(StableSwapData{Pool: poolP, IndexIn: 0, IndexOut: 1}), tokA, tokB, tokens(100, 6))
	require.NoError(t, err)
	withFee, err := a.QuoteForward(ctx, mustEncode(StableSwapData{Pool: poolP, IndexIn: 0, IndexOut: 1, FeeBps: 4}), tokA, tokB, tokens(100, 6))
	require.NoError(t, err)
	assert.True(t, withFee.Lt(noFee))
}

func TestStableSwapChecksIndices(t *testing.T) {
	pool := twoTokenPool(domain.FamilyStableSwap, tokens(10, 6), tokens(10, 6), 6, 6)
	a := NewStableSwapAdapter(newMemStore(pool), nil)
	data := mustEncode(StableSwapData{Pool: poolP, IndexIn: 1, IndexOut: 0})

	_, err := a.QuoteForward(context.Background(), data, tokA, tokB, uint256.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrIncorrectPath)

	_, err = a.QuoteReverse(context.Background(), mustEncode(StableSwapData{Pool: poolP, IndexIn: 0, IndexOut: 1}), tokA, tokB, tokens(10, 6))
	assert.ErrorIs(t, err, domain.ErrInsufficientLiquidity)
}
