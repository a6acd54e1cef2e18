package exchange

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/services/wad"
)

// MaxWeightExponent bounds the reduced weight ratio terms.
const MaxWeightExponent = 64

// weightScale is the fixed-point scale the weighted power is evaluated at.
var weightScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(36), nil)

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// reduceWeights returns wIn/wOut as p/q in lowest terms.
func reduceWeights(wIn, wOut uint32) (uint64, uint64, error) {
	g := gcd(uint64(wIn), uint64(wOut))
	p, q := uint64(wIn)/g, uint64(wOut)/g
	if p > MaxWeightExponent || q > MaxWeightExponent {
		return 0, 0, fmt.Errorf("%w: weight ratio %d/%d too fine", domain.ErrInvalidAncillaryData, p, q)
	}
	return p, q, nil
}

// nthRoot returns floor(v^(1/n)).
func nthRoot(v *big.Int, n uint64) *big.Int {
	if v.Sign() == 0 || n == 1 {
		return new(big.Int).Set(v)
	}
	bn := new(big.Int).SetUint64(n)
	bn1 := new(big.Int).SetUint64(n - 1)
	x := new(big.Int).Lsh(big.NewInt(1), uint((uint64(v.BitLen())+n-1)/n))
	for {
		xn1 := new(big.Int).Exp(x, bn1, nil)
		y := new(big.Int).Quo(v, xn1)
		y.Add(y, new(big.Int).Mul(bn1, x))
		y.Quo(y, bn)
		if y.Cmp(x) >= 0 {
			return x
		}
		x = y
	}
}

func ceilQuo(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// powRatioUp returns weightScale * (num/den)^(p/q), rounded up. It is
// evaluated as the q-th root of weightScale^q * num^p / den^p so the only
// roundings are the division and the root.
func powRatioUp(num, den *big.Int, p, q uint64) *big.Int {
	bp := new(big.Int).SetUint64(p)
	bq := new(big.Int).SetUint64(q)
	v := new(big.Int).Exp(num, bp, nil)
	v.Mul(v, new(big.Int).Exp(weightScale, bq, nil))
	v = ceilQuo(v, new(big.Int).Exp(den, bp, nil))
	root := nthRoot(v, q)
	if new(big.Int).Exp(root, bq, nil).Cmp(v) < 0 {
		root.Add(root, big.NewInt(1))
	}
	return root
}

func fromBig(v *big.Int) (*uint256.Int, error) {
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, domain.ErrArithmeticOverflow
	}
	return out, nil
}

// WeightedAmountOut is the weighted constant-mean output, rounded down.
func WeightedAmountOut(amountIn, balanceIn, balanceOut *uint256.Int, weightIn, weightOut uint32, feeBps uint16) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return nil, domain.ErrZeroAmount
	}
	if balanceIn.IsZero() || balanceOut.IsZero() {
		return nil, domain.ErrInsufficientLiquidity
	}
	p, q, err := reduceWeights(weightIn, weightOut)
	if err != nil {
		return nil, err
	}
	afterFee, err := wad.MulDiv(amountIn, feeMultiplier(feeBps), u256BpsDenom)
	if err != nil {
		return nil, err
	}
	bIn := balanceIn.ToBig()
	power := powRatioUp(bIn, new(big.Int).Add(bIn, afterFee.ToBig()), p, q)
	if power.Cmp(weightScale) >= 0 {
		return new(uint256.Int), nil
	}
	out := new(big.Int).Sub(weightScale, power)
	out.Mul(out, balanceOut.ToBig())
	out.Quo(out, weightScale)
	return fromBig(out)
}

// WeightedAmountIn is the smallest input whose weighted output covers
// amountOut. The closed form is rounded up and then walked down against
// WeightedAmountOut.
func WeightedAmountIn(amountOut, balanceIn, balanceOut *uint256.Int, weightIn, weightOut uint32, feeBps uint16) (*uint256.Int, error) {
	if amountOut.IsZero() {
		return nil, domain.ErrZeroAmount
	}
	if balanceIn.IsZero() || !amountOut.Lt(balanceOut) {
		return nil, fmt.Errorf("%w: want %s, reserve %s", domain.ErrInsufficientLiquidity, amountOut.Dec(), balanceOut.Dec())
	}
	p, q, err := reduceWeights(weightIn, weightOut)
	if err != nil {
		return nil, err
	}
	bOut := balanceOut.ToBig()
	remaining := new(big.Int).Sub(bOut, amountOut.ToBig())
	power := powRatioUp(bOut, remaining, q, p)
	if power.Cmp(weightScale) <= 0 {
		return nil, domain.ErrInsufficientLiquidity
	}
	excess := new(big.Int).Sub(power, weightScale)
	excess.Mul(excess, balanceIn.ToBig())
	beforeFee, err := fromBig(ceilQuo(excess, weightScale))
	if err != nil {
		return nil, err
	}
	estimate, err := wad.MulDivUp(beforeFee, u256BpsDenom, feeMultiplier(feeBps))
	if err != nil {
		return nil, err
	}
	return minimalAmountIn(estimate, amountOut, func(in *uint256.Int) (*uint256.Int, error) {
		return WeightedAmountOut(in, balanceIn, balanceOut, weightIn, weightOut, feeBps)
	})
}

type WeightedPoolAdapter struct {
	inProcess
}

func NewWeightedPoolAdapter(pools PoolStore, settle Settlement) *WeightedPoolAdapter {
	return &WeightedPoolAdapter{inProcess{family: domain.FamilyWeightedPool, pools: pools, settle: settle}}
}

func (a *WeightedPoolAdapter) balances(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey) (*WeightedPoolData, *uint256.Int, *uint256.Int, error) {
	d, err := decodeWeighted(data)
	if err != nil {
		return nil, nil, nil, err
	}
	st, i, j, err := a.load(ctx, d.Pool, tokenIn, tokenOut)
	if err != nil {
		return nil, nil, nil, err
	}
	return d, st.Balances[i], st.Balances[j], nil
}

func (a *WeightedPoolAdapter) QuoteForward(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey, amountIn *uint256.Int) (*uint256.Int, error) {
	d, bIn, bOut, err := a.balances(ctx, data, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	return WeightedAmountOut(amountIn, bIn, bOut, d.WeightIn, d.WeightOut, d.FeeBps)
}

func (a *WeightedPoolAdapter) QuoteReverse(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey, amountOut *uint256.Int) (*uint256.Int, error) {
	d, bIn, bOut, err := a.balances(ctx, data, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	return WeightedAmountIn(amountOut, bIn, bOut, d.WeightIn, d.WeightOut, d.FeeBps)
}

func (a *WeightedPoolAdapter) Execute(ctx context.Context, p ExecuteParams) (*uint256.Int, error) {
	d, bIn, bOut, err := a.balances(ctx, p.Data, p.TokenIn, p.TokenOut)
	if err != nil {
		return nil, err
	}
	out, err := WeightedAmountOut(p.AmountIn, bIn, bOut, d.WeightIn, d.WeightOut, d.FeeBps)
	if err != nil {
		return nil, err
	}
	return a.execute(ctx, p, d.Pool, out)
}
