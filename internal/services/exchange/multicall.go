package exchange

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

// MulticallAdapter replays pre-computed calls. It cannot quote; the realised
// output is the recipient's balance change of tokenOut.
type MulticallAdapter struct {
	dispatcher Dispatcher
	balances   BalanceReader
}

func NewMulticallAdapter(dispatcher Dispatcher, balances BalanceReader) *MulticallAdapter {
	return &MulticallAdapter{dispatcher: dispatcher, balances: balances}
}

func (a *MulticallAdapter) Family() domain.VenueFamily {
	return domain.FamilyGenericMulticall
}

func (a *MulticallAdapter) QuoteForward(context.Context, domain.AncillaryData, solana.PublicKey, solana.PublicKey, *uint256.Int) (*uint256.Int, error) {
	return nil, fmt.Errorf("%w: multicall venues cannot quote", domain.ErrUnsupportedOperation)
}

func (a *MulticallAdapter) QuoteReverse(context.Context, domain.AncillaryData, solana.PublicKey, solana.PublicKey, *uint256.Int) (*uint256.Int, error) {
	return nil, fmt.Errorf("%w: multicall venues cannot quote", domain.ErrUnsupportedOperation)
}

func (a *MulticallAdapter) Execute(ctx context.Context, p ExecuteParams) (*uint256.Int, error) {
	if a.dispatcher == nil || a.balances == nil {
		return nil, fmt.Errorf("%w: multicall venue not wired", domain.ErrUnsupportedOperation)
	}
	d, err := decodeMulticall(p.Data)
	if err != nil {
		return nil, err
	}
	before, err := a.balances.BalanceOf(ctx, p.TokenOut, p.Recipient)
	if err != nil {
		return nil, err
	}
	for i, call := range d.Calls {
		if _, err := a.dispatcher.Dispatch(ctx, call); err != nil {
			return nil, fmt.Errorf("multicall %d to %s: %w", i, call.Target, err)
		}
	}
	after, err := a.balances.BalanceOf(ctx, p.TokenOut, p.Recipient)
	if err != nil {
		return nil, err
	}
	out := new(uint256.Int)
	if after.Gt(before) {
		out.Sub(after, before)
	}
	if p.MinAmountOut != nil && out.Lt(p.MinAmountOut) {
		return nil, fmt.Errorf("%w: got %s, min %s", domain.ErrSlippageToleranceExceeded, out.Dec(), p.MinAmountOut.Dec())
	}
	return out, nil
}
