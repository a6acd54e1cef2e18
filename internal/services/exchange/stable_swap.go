package exchange

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/services/wad"
)

const stableMaxIterations = 255

// StableInvariant solves the stable-swap invariant D for 18-decimal balances
// by Newton iteration.
func StableInvariant(amp uint64, xp []*uint256.Int) (*uint256.Int, error) {
	n := uint256.NewInt(uint64(len(xp)))
	sum := new(uint256.Int)
	for _, x := range xp {
		var err error
		if sum, err = add(sum, x); err != nil {
			return nil, err
		}
	}
	if sum.IsZero() {
		return new(uint256.Int), nil
	}
	ann, err := mul(uint256.NewInt(amp), n)
	if err != nil {
		return nil, err
	}
	if ann.IsZero() {
		return nil, fmt.Errorf("%w: zero amplification", domain.ErrInvalidPool)
	}
	annMinusOne := new(uint256.Int).Sub(ann, u256One)
	nPlusOne := new(uint256.Int).AddUint64(n, 1)

	d := new(uint256.Int).Set(sum)
	for it := 0; it < stableMaxIterations; it++ {
		dp := new(uint256.Int).Set(d)
		for _, x := range xp {
			if x.IsZero() {
				return nil, domain.ErrInsufficientLiquidity
			}
			xn, err := mul(x, n)
			if err != nil {
				return nil, err
			}
			if dp, err = wad.MulDiv(dp, d, xn); err != nil {
				return nil, err
			}
		}
		prev := d

		annS, err := mul(ann, sum)
		if err != nil {
			return nil, err
		}
		dpN, err := mul(dp, n)
		if err != nil {
			return nil, err
		}
		left, err := add(annS, dpN)
		if err != nil {
			return nil, err
		}
		t1, err := mul(annMinusOne, d)
		if err != nil {
			return nil, err
		}
		t2, err := mul(nPlusOne, dp)
		if err != nil {
			return nil, err
		}
		denominator, err := add(t1, t2)
		if err != nil {
			return nil, err
		}
		if d, err = wad.MulDiv(left, d, denominator); err != nil {
			return nil, err
		}
		if absDiffLE1(d, prev) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: stable invariant did not converge", domain.ErrInvalidPool)
}

// stableBalance solves the balance of token j such that the invariant holds
// when token i has balance x.
func stableBalance(amp uint64, xp []*uint256.Int, i, j int, x, d *uint256.Int) (*uint256.Int, error) {
	n := uint256.NewInt(uint64(len(xp)))
	ann, err := mul(uint256.NewInt(amp), n)
	if err != nil {
		return nil, err
	}
	c := new(uint256.Int).Set(d)
	s := new(uint256.Int)
	for k := range xp {
		if k == j {
			continue
		}
		xk := xp[k]
		if k == i {
			xk = x
		}
		if xk.IsZero() {
			return nil, domain.ErrInsufficientLiquidity
		}
		if s, err = add(s, xk); err != nil {
			return nil, err
		}
		xkN, err := mul(xk, n)
		if err != nil {
			return nil, err
		}
		if c, err = wad.MulDiv(c, d, xkN); err != nil {
			return nil, err
		}
	}
	annN, err := mul(ann, n)
	if err != nil {
		return nil, err
	}
	if c, err = wad.MulDiv(c, d, annN); err != nil {
		return nil, err
	}
	b, err := add(s, new(uint256.Int).Div(d, ann))
	if err != nil {
		return nil, err
	}

	y := new(uint256.Int).Set(d)
	for it := 0; it < stableMaxIterations; it++ {
		prev := y
		ySq, err := mul(y, y)
		if err != nil {
			return nil, err
		}
		numerator, err := add(ySq, c)
		if err != nil {
			return nil, err
		}
		twoY, err := add(y, y)
		if err != nil {
			return nil, err
		}
		denominator, err := add(twoY, b)
		if err != nil {
			return nil, err
		}
		if !denominator.Gt(d) {
			return nil, domain.ErrInsufficientLiquidity
		}
		denominator.Sub(denominator, d)
		y = numerator.Div(numerator, denominator)
		if absDiffLE1(y, prev) {
			return y, nil
		}
	}
	return nil, fmt.Errorf("%w: stable balance did not converge", domain.ErrInvalidPool)
}

type StableSwapAdapter struct {
	inProcess
}

func NewStableSwapAdapter(pools PoolStore, settle Settlement) *StableSwapAdapter {
	return &StableSwapAdapter{inProcess{family: domain.FamilyStableSwap, pools: pools, settle: settle}}
}

type stableState struct {
	data *StableSwapData
	pool *domain.PoolState
	xp   []*uint256.Int
	d    *uint256.Int
}

func (a *StableSwapAdapter) state(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey) (*stableState, error) {
	d, err := decodeStableSwap(data)
	if err != nil {
		return nil, err
	}
	st, i, j, err := a.load(ctx, d.Pool, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if i != int(d.IndexIn) || j != int(d.IndexOut) {
		return nil, fmt.Errorf("%w: indices %d->%d do not match pool tokens %d->%d", domain.ErrIncorrectPath, d.IndexIn, d.IndexOut, i, j)
	}
	xp := make([]*uint256.Int, len(st.Balances))
	for k, bal := range st.Balances {
		if xp[k], err = wad.ToWad(bal, st.Decimals[k]); err != nil {
			return nil, err
		}
	}
	inv, err := StableInvariant(st.Amplification, xp)
	if err != nil {
		return nil, err
	}
	return &stableState{data: d, pool: st, xp: xp, d: inv}, nil
}

func (s *stableState) amountOut(amountIn *uint256.Int) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return nil, domain.ErrZeroAmount
	}
	i, j := int(s.data.IndexIn), int(s.data.IndexOut)
	afterFee, err := mul(amountIn, feeMultiplier(s.data.FeeBps))
	if err != nil {
		return nil, err
	}
	afterFee.Div(afterFee, u256BpsDenom)
	dx, err := wad.ToWad(afterFee, s.pool.Decimals[i])
	if err != nil {
		return nil, err
	}
	x, err := add(s.xp[i], dx)
	if err != nil {
		return nil, err
	}
	y, err := stableBalance(s.pool.Amplification, s.xp, i, j, x, s.d)
	if err != nil {
		return nil, err
	}
	yPlusOne := new(uint256.Int).AddUint64(y, 1)
	if !s.xp[j].Gt(yPlusOne) {
		return nil, domain.ErrInsufficientLiquidity
	}
	dy := new(uint256.Int).Sub(s.xp[j], yPlusOne)
	return wad.FromWad(dy, s.pool.Decimals[j])
}

// amountIn is the smallest input whose output covers amountOut.
func (s *stableState) amountIn(amountOut *uint256.Int) (*uint256.Int, error) {
	est, err := s.estimateAmountIn(amountOut)
	if err != nil {
		return nil, err
	}
	return minimalAmountIn(est, amountOut, s.amountOut)
}

func (s *stableState) estimateAmountIn(amountOut *uint256.Int) (*uint256.Int, error) {
	if amountOut.IsZero() {
		return nil, domain.ErrZeroAmount
	}
	i, j := int(s.data.IndexIn), int(s.data.IndexOut)
	dy, err := wad.RescaleUp(amountOut, s.pool.Decimals[j], wad.Decimals)
	if err != nil {
		return nil, err
	}
	if !dy.Lt(s.xp[j]) {
		return nil, fmt.Errorf("%w: want %s, reserve %s", domain.ErrInsufficientLiquidity, amountOut.Dec(), s.pool.Balances[j].Dec())
	}
	y := new(uint256.Int).Sub(s.xp[j], dy)
	x, err := stableBalance(s.pool.Amplification, s.xp, j, i, y, s.d)
	if err != nil {
		return nil, err
	}
	if !x.Gt(s.xp[i]) {
		return nil, domain.ErrInsufficientLiquidity
	}
	dx := new(uint256.Int).Sub(x, s.xp[i])
	dx.AddUint64(dx, 1)
	beforeFee, err := wad.RescaleUp(dx, wad.Decimals, s.pool.Decimals[i])
	if err != nil {
		return nil, err
	}
	return wad.MulDivUp(beforeFee, u256BpsDenom, feeMultiplier(s.data.FeeBps))
}

func (a *StableSwapAdapter) QuoteForward(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey, amountIn *uint256.Int) (*uint256.Int, error) {
	s, err := a.state(ctx, data, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	return s.amountOut(amountIn)
}

func (a *StableSwapAdapter) QuoteReverse(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey, amountOut *uint256.Int) (*uint256.Int, error) {
	s, err := a.state(ctx, data, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	return s.amountIn(amountOut)
}

func (a *StableSwapAdapter) Execute(ctx context.Context, p ExecuteParams) (*uint256.Int, error) {
	s, err := a.state(ctx, p.Data, p.TokenIn, p.TokenOut)
	if err != nil {
		return nil, err
	}
	out, err := s.amountOut(p.AmountIn)
	if err != nil {
		return nil, err
	}
	return a.execute(ctx, p, s.data.Pool, out)
}
