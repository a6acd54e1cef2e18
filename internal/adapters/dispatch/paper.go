// Package dispatch executes venue calls without sending transactions.
package dispatch

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/common"
	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/services/exchange"
)

// Paper fills concentrated-liquidity swap calls at the quoter's exact-in
// price and settles the result on a ledger. The call's deadline is carried
// through untouched; the executor checks it once before the first hop.
type Paper struct {
	quoter exchange.Quoter
	settle exchange.Settlement
	log    *common.ServiceLogger
}

func NewPaper(quoter exchange.Quoter, settle exchange.Settlement) *Paper {
	return &Paper{
		quoter: quoter,
		settle: settle,
		log:    common.NewComponentLogger("paperDispatcher"),
	}
}

func (d *Paper) Dispatch(ctx context.Context, call exchange.Call) ([]byte, error) {
	swap, ok, err := exchange.DecodeConcentratedSwapCall(call.CallData)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: call to %s is not a swap", domain.ErrUnsupportedOperation, call.Target)
	}
	if swap.Pool != call.Target {
		return nil, fmt.Errorf("%w: call target %s, swap pool %s", domain.ErrIncorrectPath, call.Target, swap.Pool)
	}

	amountIn := new(uint256.Int).SetBytes32(swap.AmountIn[:])
	minOut := new(uint256.Int).SetBytes32(swap.MinAmountOut[:])
	out, err := d.quoter.QuoteExactIn(ctx, swap.Pool, swap.TokenIn, swap.TokenOut, amountIn, swap.FeeTier)
	if err != nil {
		return nil, err
	}
	if out.Lt(minOut) {
		return nil, fmt.Errorf("%w: got %s, min %s", domain.ErrSlippageToleranceExceeded, out.Dec(), minOut.Dec())
	}
	if d.settle != nil {
		if err := d.settle.Settle(ctx, swap.Payer, swap.TokenIn, amountIn, swap.Recipient, swap.TokenOut, out); err != nil {
			return nil, err
		}
	}

	d.log.Debug().
		Str("pool", swap.Pool.String()).
		Str("amountIn", amountIn.Dec()).
		Str("amountOut", out.Dec()).
		Msg("[PaperDispatcher] filled swap")
	return exchange.EncodeAmount(out), nil
}
