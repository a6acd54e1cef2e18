package exchange

import (
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

var (
	u256Zero     = uint256.NewInt(0)
	u256One      = uint256.NewInt(1)
	u256BpsDenom = uint256.NewInt(bpsDenominator)
)

func mul(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, domain.ErrArithmeticOverflow
	}
	return z, nil
}

func add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, domain.ErrArithmeticOverflow
	}
	return z, nil
}

func divUp(a, b *uint256.Int) *uint256.Int {
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(a, b, r)
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q
}

func absDiffLE1(a, b *uint256.Int) bool {
	d := new(uint256.Int)
	if a.Gt(b) {
		d.Sub(a, b)
	} else {
		d.Sub(b, a)
	}
	return d.Cmp(u256One) <= 0
}

// feeMultiplier returns 10000 - feeBps.
func feeMultiplier(feeBps uint16) *uint256.Int {
	return uint256.NewInt(uint64(bpsDenominator - uint64(feeBps)))
}

// refineWindow bounds how far a reverse estimate is walked.
const refineWindow = 8

// minimalAmountIn returns the smallest input within refineWindow of est whose
// forward output covers amountOut. est is first raised until it covers.
func minimalAmountIn(est, amountOut *uint256.Int, forward func(*uint256.Int) (*uint256.Int, error)) (*uint256.Int, error) {
	in := new(uint256.Int).Set(est)
	for i := 0; i < refineWindow; i++ {
		out, err := forward(in)
		if err != nil {
			return nil, err
		}
		if !out.Lt(amountOut) {
			break
		}
		in.AddUint64(in, 1)
	}
	best := in
	for i := uint64(1); i <= refineWindow && in.GtUint64(i); i++ {
		candidate := new(uint256.Int).SubUint64(in, i)
		out, err := forward(candidate)
		if err != nil || out.Lt(amountOut) {
			continue
		}
		best = candidate
	}
	return best, nil
}
