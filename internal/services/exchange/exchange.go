// Package exchange holds one adapter per venue family. Each adapter quotes and
// executes a single hop against one venue.
package exchange

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

// ExecuteParams carries one hop execution. Payer holds TokenIn before the
// call; TokenOut is credited to Recipient.
type ExecuteParams struct {
	Data         domain.AncillaryData
	TokenIn      solana.PublicKey
	TokenOut     solana.PublicKey
	AmountIn     *uint256.Int
	MinAmountOut *uint256.Int
	Payer        solana.PublicKey
	Recipient    solana.PublicKey
	Deadline     int64
}

// Adapter prices and executes hops on one venue. Amounts are in the native
// decimals of their token.
type Adapter interface {
	Family() domain.VenueFamily
	QuoteForward(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey, amountIn *uint256.Int) (*uint256.Int, error)
	QuoteReverse(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey, amountOut *uint256.Int) (*uint256.Int, error)
	Execute(ctx context.Context, p ExecuteParams) (*uint256.Int, error)
}

// Quoter is an external price source for venues that cannot be priced from
// pool balances alone.
type Quoter interface {
	QuoteExactIn(ctx context.Context, pool, tokenIn, tokenOut solana.PublicKey, amountIn *uint256.Int, feeTier uint32) (*uint256.Int, error)
	QuoteExactOut(ctx context.Context, pool, tokenIn, tokenOut solana.PublicKey, amountOut *uint256.Int, feeTier uint32) (*uint256.Int, error)
}

type QuoterSource interface {
	QuoterFor(venue domain.VenueID) (Quoter, bool)
}

// Call is one raw venue invocation.
type Call struct {
	Target   solana.PublicKey
	CallData []byte
	Value    uint64
}

// Dispatcher sends raw calls to venues outside the process.
type Dispatcher interface {
	Dispatch(ctx context.Context, call Call) ([]byte, error)
}

// PoolStore owns the balances of in-process pools.
type PoolStore interface {
	Pool(ctx context.Context, address solana.PublicKey) (*domain.PoolState, error)
	ApplySwap(ctx context.Context, address, tokenIn solana.PublicKey, amountIn *uint256.Int, tokenOut solana.PublicKey, amountOut *uint256.Int) error
}

type BalanceReader interface {
	BalanceOf(ctx context.Context, token, owner solana.PublicKey) (*uint256.Int, error)
}

// Settlement moves token balances for a completed in-process swap.
type Settlement interface {
	Settle(ctx context.Context, payer, tokenIn solana.PublicKey, amountIn *uint256.Int, recipient, tokenOut solana.PublicKey, amountOut *uint256.Int) error
}
