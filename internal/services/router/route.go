package router

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/metrics"
)

// RouteAggregator chains hop groups. Inside a hop the running amount is split
// across paths by share; hop outputs are summed into the next hop's input.
type RouteAggregator struct {
	engine *AmountEngine
}

func NewRouteAggregator(engine *AmountEngine) *RouteAggregator {
	return &RouteAggregator{engine: engine}
}

func checkShares(route domain.Route) error {
	if len(route.Hops) == 0 {
		return domain.Locate(domain.ErrEmptyPlan)
	}
	for h, hop := range route.Hops {
		if !hop.HasPositiveShares() {
			return domain.AtHop(domain.ErrSumOfSharesMustBePositive, h)
		}
	}
	return nil
}

// AmountsOutByRoute returns the output of route for amountIn.
func (a *RouteAggregator) AmountsOutByRoute(ctx context.Context, route domain.Route, amountIn *uint256.Int) (*uint256.Int, error) {
	q, err := a.forward(ctx, route, amountIn, false)
	if err != nil {
		return nil, err
	}
	return q.AmountOut, nil
}

// AmountsInByRoute returns the input route needs to produce amountOut. The
// target is split by share before each path is reverse-quoted, which is exact
// only for share-linear venues.
func (a *RouteAggregator) AmountsInByRoute(ctx context.Context, route domain.Route, amountOut *uint256.Int) (*uint256.Int, error) {
	q, err := a.reverse(ctx, route, amountOut, false)
	if err != nil {
		return nil, err
	}
	return q.AmountIn, nil
}

// QuoteRouteForward is AmountsOutByRoute with the per-hop breakdown.
func (a *RouteAggregator) QuoteRouteForward(ctx context.Context, route domain.Route, amountIn *uint256.Int) (*domain.RouteQuote, error) {
	return a.forward(ctx, route, amountIn, true)
}

// QuoteRouteReverse is AmountsInByRoute with the per-hop breakdown.
func (a *RouteAggregator) QuoteRouteReverse(ctx context.Context, route domain.Route, amountOut *uint256.Int) (*domain.RouteQuote, error) {
	return a.reverse(ctx, route, amountOut, true)
}

func (a *RouteAggregator) forward(ctx context.Context, route domain.Route, amountIn *uint256.Int, breakdown bool) (*domain.RouteQuote, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, domain.Locate(domain.ErrZeroAmount)
	}
	if err := checkShares(route); err != nil {
		return nil, err
	}
	rq := &domain.RouteQuote{AmountIn: amountIn}
	if breakdown {
		rq.Hops = make([]domain.HopQuote, len(route.Hops))
	}
	running := amountIn
	for h, hop := range route.Hops {
		hq, err := a.forwardHop(ctx, hop, running, breakdown)
		if err != nil {
			return nil, domain.AtHop(err, h)
		}
		if breakdown {
			rq.Hops[h] = hq
		}
		running = hq.AmountOut
	}
	rq.AmountOut = running
	return rq, nil
}

func (a *RouteAggregator) forwardHop(ctx context.Context, hop domain.HopGroup, amountIn *uint256.Int, breakdown bool) (domain.HopQuote, error) {
	hq := domain.HopQuote{TargetToken: hop.TargetToken, AmountIn: amountIn}
	parts, err := SplitByShares(amountIn, hopShares(hop))
	if err != nil {
		return hq, err
	}
	if breakdown {
		hq.Paths = make([]domain.PathQuote, len(hop.Paths))
	}
	total := new(uint256.Int)
	for p, path := range hop.Paths {
		if parts[p].IsZero() {
			metrics.PathsSkipped.Inc()
			if breakdown {
				hq.Paths[p] = skippedPath(path)
			}
			continue
		}
		out, err := a.engine.Forward(ctx, path, parts[p])
		if err != nil {
			return hq, domain.AtPath(err, -1, p)
		}
		if _, overflow := total.AddOverflow(total, out); overflow {
			return hq, domain.AtPath(domain.ErrArithmeticOverflow, -1, p)
		}
		if breakdown {
			if hq.Paths[p], err = a.engine.pathQuote(ctx, path, parts[p], out); err != nil {
				return hq, domain.AtPath(err, -1, p)
			}
		}
	}
	hq.AmountOut = total
	return hq, nil
}

func (a *RouteAggregator) reverse(ctx context.Context, route domain.Route, amountOut *uint256.Int, breakdown bool) (*domain.RouteQuote, error) {
	if amountOut == nil || amountOut.IsZero() {
		return nil, domain.Locate(domain.ErrZeroAmount)
	}
	if err := checkShares(route); err != nil {
		return nil, err
	}
	rq := &domain.RouteQuote{AmountOut: amountOut}
	if breakdown {
		rq.Hops = make([]domain.HopQuote, len(route.Hops))
	}
	running := amountOut
	for h := len(route.Hops) - 1; h >= 0; h-- {
		hq, err := a.reverseHop(ctx, route.Hops[h], running, breakdown)
		if err != nil {
			return nil, domain.AtHop(err, h)
		}
		if breakdown {
			rq.Hops[h] = hq
		}
		running = hq.AmountIn
	}
	rq.AmountIn = running
	return rq, nil
}

func (a *RouteAggregator) reverseHop(ctx context.Context, hop domain.HopGroup, amountOut *uint256.Int, breakdown bool) (domain.HopQuote, error) {
	hq := domain.HopQuote{TargetToken: hop.TargetToken, AmountOut: amountOut}
	parts, err := SplitByShares(amountOut, hopShares(hop))
	if err != nil {
		return hq, err
	}
	if breakdown {
		hq.Paths = make([]domain.PathQuote, len(hop.Paths))
	}
	total := new(uint256.Int)
	for p, path := range hop.Paths {
		if parts[p].IsZero() {
			metrics.PathsSkipped.Inc()
			if breakdown {
				hq.Paths[p] = skippedPath(path)
			}
			continue
		}
		in, err := a.engine.Reverse(ctx, path, parts[p])
		if err != nil {
			return hq, domain.AtPath(err, -1, p)
		}
		if _, overflow := total.AddOverflow(total, in); overflow {
			return hq, domain.AtPath(domain.ErrArithmeticOverflow, -1, p)
		}
		if breakdown {
			if hq.Paths[p], err = a.engine.pathQuote(ctx, path, in, parts[p]); err != nil {
				return hq, domain.AtPath(err, -1, p)
			}
		}
	}
	hq.AmountIn = total
	return hq, nil
}
