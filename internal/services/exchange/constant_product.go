package exchange

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

// GetAmountOut is the x*y=k output for amountIn after a fee in basis points,
// rounded down.
func GetAmountOut(amountIn, reserveIn, reserveOut *uint256.Int, feeBps uint16) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return nil, domain.ErrZeroAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, domain.ErrInsufficientLiquidity
	}
	amountInWithFee, err := mul(amountIn, feeMultiplier(feeBps))
	if err != nil {
		return nil, err
	}
	numerator, err := mul(amountInWithFee, reserveOut)
	if err != nil {
		return nil, err
	}
	scaledReserve, err := mul(reserveIn, u256BpsDenom)
	if err != nil {
		return nil, err
	}
	denominator, err := add(scaledReserve, amountInWithFee)
	if err != nil {
		return nil, err
	}
	return numerator.Div(numerator, denominator), nil
}

// GetAmountIn is the smallest input that yields amountOut, rounded up.
func GetAmountIn(amountOut, reserveIn, reserveOut *uint256.Int, feeBps uint16) (*uint256.Int, error) {
	if amountOut.IsZero() {
		return nil, domain.ErrZeroAmount
	}
	if reserveIn.IsZero() || !amountOut.Lt(reserveOut) {
		return nil, fmt.Errorf("%w: want %s, reserve %s", domain.ErrInsufficientLiquidity, amountOut.Dec(), reserveOut.Dec())
	}
	numerator, err := mul(reserveIn, amountOut)
	if err != nil {
		return nil, err
	}
	if numerator, err = mul(numerator, u256BpsDenom); err != nil {
		return nil, err
	}
	remaining := new(uint256.Int).Sub(reserveOut, amountOut)
	denominator, err := mul(remaining, feeMultiplier(feeBps))
	if err != nil {
		return nil, err
	}
	return divUp(numerator, denominator), nil
}

type ConstantProductAdapter struct {
	inProcess
}

func NewConstantProductAdapter(pools PoolStore, settle Settlement) *ConstantProductAdapter {
	return &ConstantProductAdapter{inProcess{family: domain.FamilyConstantProduct, pools: pools, settle: settle}}
}

func (a *ConstantProductAdapter) reserves(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey) (*ConstantProductData, *uint256.Int, *uint256.Int, error) {
	d, err := decodeConstantProduct(data)
	if err != nil {
		return nil, nil, nil, err
	}
	st, i, j, err := a.load(ctx, d.Pool, tokenIn, tokenOut)
	if err != nil {
		return nil, nil, nil, err
	}
	return d, st.Balances[i], st.Balances[j], nil
}

func (a *ConstantProductAdapter) QuoteForward(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey, amountIn *uint256.Int) (*uint256.Int, error) {
	d, rIn, rOut, err := a.reserves(ctx, data, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	return GetAmountOut(amountIn, rIn, rOut, d.FeeBps)
}

func (a *ConstantProductAdapter) QuoteReverse(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey, amountOut *uint256.Int) (*uint256.Int, error) {
	d, rIn, rOut, err := a.reserves(ctx, data, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	return GetAmountIn(amountOut, rIn, rOut, d.FeeBps)
}

func (a *ConstantProductAdapter) Execute(ctx context.Context, p ExecuteParams) (*uint256.Int, error) {
	d, rIn, rOut, err := a.reserves(ctx, p.Data, p.TokenIn, p.TokenOut)
	if err != nil {
		return nil, err
	}
	out, err := GetAmountOut(p.AmountIn, rIn, rOut, d.FeeBps)
	if err != nil {
		return nil, err
	}
	return a.execute(ctx, p, d.Pool, out)
}
