// Package router prices and executes split plans: single paths through the
// AmountEngine, routes through the RouteAggregator, mega-route lists through
// the MegaRouteAggregator and executions through the SwapExecutor.
package router

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/common"
	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/metrics"
	"github.com/hxuan190/route-aggregator/internal/services/exchange"
	"github.com/hxuan190/route-aggregator/internal/services/wad"
)

// AdapterResolver maps a venue id to its adapter.
type AdapterResolver interface {
	Resolve(id domain.VenueID) (exchange.Adapter, error)
}

// DecimalsSource resolves the native decimals of a token.
type DecimalsSource interface {
	Decimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
}

// AmountEngine quotes and executes one path against its venue adapter.
type AmountEngine struct {
	venues AdapterResolver
	tokens DecimalsSource
	log    *common.ServiceLogger
}

// NewAmountEngine creates an engine. tokens may be nil, in which case quote
// breakdowns carry no WAD-normalised amounts.
func NewAmountEngine(venues AdapterResolver, tokens DecimalsSource) *AmountEngine {
	return &AmountEngine{
		venues: venues,
		tokens: tokens,
		log:    common.NewComponentLogger("amountEngine"),
	}
}

func observe(adapter exchange.Adapter, op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.AdapterCalls.WithLabelValues(adapter.Family().String(), op, status).Inc()
}

// Forward returns the output of path for amountIn.
func (e *AmountEngine) Forward(ctx context.Context, path domain.Path, amountIn *uint256.Int) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, domain.ErrZeroAmount
	}
	adapter, err := e.venues.Resolve(path.VenueID)
	if err != nil {
		return nil, err
	}
	out, err := adapter.QuoteForward(ctx, path.AncillaryData, domain.WrapIfNative(path.TokenIn), domain.WrapIfNative(path.TokenOut), amountIn)
	observe(adapter, "quote_forward", err)
	if err != nil {
		e.log.Debug().Err(err).Uint32("venue", uint32(path.VenueID)).Str("amountIn", amountIn.Dec()).Msg("[AmountEngine] forward quote failed")
		return nil, err
	}
	return out, nil
}

// Reverse returns the input path needs to produce amountOut.
func (e *AmountEngine) Reverse(ctx context.Context, path domain.Path, amountOut *uint256.Int) (*uint256.Int, error) {
	if amountOut == nil || amountOut.IsZero() {
		return nil, domain.ErrZeroAmount
	}
	adapter, err := e.venues.Resolve(path.VenueID)
	if err != nil {
		return nil, err
	}
	in, err := adapter.QuoteReverse(ctx, path.AncillaryData, domain.WrapIfNative(path.TokenIn), domain.WrapIfNative(path.TokenOut), amountOut)
	observe(adapter, "quote_reverse", err)
	if err != nil {
		e.log.Debug().Err(err).Uint32("venue", uint32(path.VenueID)).Str("amountOut", amountOut.Dec()).Msg("[AmountEngine] reverse quote failed")
		return nil, err
	}
	return in, nil
}

// Execute swaps amountIn through path, paying from payer and crediting
// recipient.
func (e *AmountEngine) Execute(ctx context.Context, path domain.Path, amountIn *uint256.Int, payer, recipient solana.PublicKey, deadline int64, minAmountOut *uint256.Int) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, domain.ErrZeroAmount
	}
	adapter, err := e.venues.Resolve(path.VenueID)
	if err != nil {
		return nil, err
	}
	out, err := adapter.Execute(ctx, exchange.ExecuteParams{
		Data:         path.AncillaryData,
		TokenIn:      domain.WrapIfNative(path.TokenIn),
		TokenOut:     domain.WrapIfNative(path.TokenOut),
		AmountIn:     amountIn,
		MinAmountOut: minAmountOut,
		Payer:        payer,
		Recipient:    recipient,
		Deadline:     deadline,
	})
	observe(adapter, "execute", err)
	if err != nil {
		e.log.Debug().Err(err).Uint32("venue", uint32(path.VenueID)).Str("amountIn", amountIn.Dec()).Msg("[AmountEngine] execute failed")
		return nil, err
	}
	return out, nil
}

func (e *AmountEngine) toWad(ctx context.Context, token solana.PublicKey, amount *uint256.Int) (*uint256.Int, error) {
	decimals, err := e.tokens.Decimals(ctx, domain.WrapIfNative(token))
	if err != nil {
		return nil, err
	}
	return wad.ToWad(amount, decimals)
}

// pathQuote builds the breakdown entry of one priced path.
func (e *AmountEngine) pathQuote(ctx context.Context, path domain.Path, amountIn, amountOut *uint256.Int) (domain.PathQuote, error) {
	pq := domain.PathQuote{
		VenueID:   path.VenueID,
		TokenIn:   path.TokenIn,
		TokenOut:  path.TokenOut,
		AmountIn:  amountIn,
		AmountOut: amountOut,
	}
	if adapter, err := e.venues.Resolve(path.VenueID); err == nil {
		pq.Family = adapter.Family()
	}
	if e.tokens == nil || amountIn.IsZero() {
		return pq, nil
	}
	var err error
	if pq.AmountInWad, err = e.toWad(ctx, path.TokenIn, amountIn); err != nil {
		return pq, err
	}
	if pq.AmountOutWad, err = e.toWad(ctx, path.TokenOut, amountOut); err != nil {
		return pq, err
	}
	// a sub-wad input of a token with more than 18 decimals has no price
	if pq.AmountInWad.IsZero() {
		return pq, nil
	}
	if pq.PriceWad, err = wad.Div(pq.AmountOutWad, pq.AmountInWad); err != nil {
		return pq, err
	}
	return pq, nil
}

// skippedPath is the breakdown entry of a path whose split part was zero.
func skippedPath(path domain.Path) domain.PathQuote {
	return domain.PathQuote{
		VenueID:   path.VenueID,
		TokenIn:   path.TokenIn,
		TokenOut:  path.TokenOut,
		AmountIn:  new(uint256.Int),
		AmountOut: new(uint256.Int),
		Skipped:   true,
	}
}
