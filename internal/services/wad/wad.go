// Package wad implements 18-decimal fixed-point arithmetic and decimal
// rescaling on 256-bit unsigned integers.
package wad

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

const Decimals uint8 = 18

// MaxDecimals is the largest power of ten that fits in 256 bits.
const MaxDecimals uint8 = 77

var (
	pow10 [MaxDecimals + 1]uint256.Int

	// One is 1e18, the WAD unit. Callers must not mutate it.
	One *uint256.Int
)

func init() {
	pow10[0].SetUint64(1)
	ten := uint256.NewInt(10)
	for i := 1; i <= int(MaxDecimals); i++ {
		pow10[i].Mul(&pow10[i-1], ten)
	}
	One = &pow10[Decimals]
}

var uint256Pool = sync.Pool{
	New: func() interface{} {
		return new(uint256.Int)
	},
}

// GetU256 gets a uint256.Int from the pool
func GetU256() *uint256.Int {
	return uint256Pool.Get().(*uint256.Int)
}

// PutU256 returns a uint256.Int to the pool
func PutU256(v *uint256.Int) {
	v.Clear()
	uint256Pool.Put(v)
}

// Pow10 returns a fresh copy of 10^n.
func Pow10(n uint8) (*uint256.Int, error) {
	if n > MaxDecimals {
		return nil, domain.ErrArithmeticOverflow
	}
	return new(uint256.Int).Set(&pow10[n]), nil
}

// Mul returns a*b/1e18 rounded toward zero.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	return MulDiv(a, b, One)
}

// MulUp returns a*b/1e18 rounded up.
func MulUp(a, b *uint256.Int) (*uint256.Int, error) {
	return MulDivUp(a, b, One)
}

// Div returns a*1e18/b rounded toward zero.
func Div(a, b *uint256.Int) (*uint256.Int, error) {
	return MulDiv(a, One, b)
}

// DivUp returns a*1e18/b rounded up.
func DivUp(a, b *uint256.Int) (*uint256.Int, error) {
	return MulDivUp(a, One, b)
}

// MulDiv returns a*b/c rounded toward zero. The product must fit in 256 bits.
func MulDiv(a, b, c *uint256.Int) (*uint256.Int, error) {
	if c.IsZero() {
		return nil, domain.ErrDivisionByZero
	}
	prod, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, domain.ErrArithmeticOverflow
	}
	return prod.Div(prod, c), nil
}

// MulDivUp returns a*b/c rounded up.
func MulDivUp(a, b, c *uint256.Int) (*uint256.Int, error) {
	if c.IsZero() {
		return nil, domain.ErrDivisionByZero
	}
	prod, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, domain.ErrArithmeticOverflow
	}
	rem := GetU256()
	defer PutU256(rem)
	rem.Mod(prod, c)
	prod.Div(prod, c)
	if !rem.IsZero() {
		prod.AddUint64(prod, 1)
	}
	return prod, nil
}

// Rescale converts amount between decimal precisions. Widening multiplies and
// fails on overflow, narrowing truncates.
func Rescale(amount *uint256.Int, from, to uint8) (*uint256.Int, error) {
	return rescale(amount, from, to, false)
}

// RescaleUp is Rescale with narrowing rounded up.
func RescaleUp(amount *uint256.Int, from, to uint8) (*uint256.Int, error) {
	return rescale(amount, from, to, true)
}

func rescale(amount *uint256.Int, from, to uint8, up bool) (*uint256.Int, error) {
	if from > MaxDecimals || to > MaxDecimals {
		return nil, domain.ErrArithmeticOverflow
	}
	out := new(uint256.Int).Set(amount)
	switch {
	case from == to:
		return out, nil
	case to > from:
		if _, overflow := out.MulOverflow(out, &pow10[to-from]); overflow {
			return nil, domain.ErrArithmeticOverflow
		}
		return out, nil
	default:
		factor := &pow10[from-to]
		if up {
			rem := GetU256()
			defer PutU256(rem)
			rem.Mod(out, factor)
			out.Div(out, factor)
			if !rem.IsZero() {
				out.AddUint64(out, 1)
			}
			return out, nil
		}
		return out.Div(out, factor), nil
	}
}

// ToWad normalises an amount with the given decimals to 18 decimals.
func ToWad(amount *uint256.Int, decimals uint8) (*uint256.Int, error) {
	return Rescale(amount, decimals, Decimals)
}

// FromWad converts an 18-decimal amount back to native decimals, truncating.
func FromWad(amount *uint256.Int, decimals uint8) (*uint256.Int, error) {
	return Rescale(amount, Decimals, decimals)
}

// Add returns a+b, failing on overflow.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, domain.ErrArithmeticOverflow
	}
	return sum, nil
}
