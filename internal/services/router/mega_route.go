package router

import (
	"context"
	"time"

	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/metrics"
)

// MegaRouteAggregator splits a total amount across independent routes that
// share tokenIn and tokenOut and sums their results.
type MegaRouteAggregator struct {
	routes *RouteAggregator
}

func NewMegaRouteAggregator(routes *RouteAggregator) *MegaRouteAggregator {
	return &MegaRouteAggregator{routes: routes}
}

// AmountsOutByMegaRoutes returns the summed output of megaRoutes for
// totalAmountIn.
func (m *MegaRouteAggregator) AmountsOutByMegaRoutes(ctx context.Context, megaRoutes []domain.MegaRoute, totalAmountIn *uint256.Int) (*uint256.Int, error) {
	q, err := m.quote(ctx, domain.PlanFromMegaRoutes(megaRoutes), totalAmountIn, domain.DirectionForward, false)
	if err != nil {
		return nil, err
	}
	return q.AmountOut, nil
}

// AmountInByMegaRoutes returns the summed input megaRoutes need to produce
// totalAmountOut.
func (m *MegaRouteAggregator) AmountInByMegaRoutes(ctx context.Context, megaRoutes []domain.MegaRoute, totalAmountOut *uint256.Int) (*uint256.Int, error) {
	q, err := m.quote(ctx, domain.PlanFromMegaRoutes(megaRoutes), totalAmountOut, domain.DirectionReverse, false)
	if err != nil {
		return nil, err
	}
	return q.AmountIn, nil
}

// QuoteForward prices plan for amountIn and returns the full breakdown.
func (m *MegaRouteAggregator) QuoteForward(ctx context.Context, plan domain.Plan, amountIn *uint256.Int) (*domain.Quote, error) {
	return m.observed(ctx, plan, amountIn, domain.DirectionForward)
}

// QuoteReverse prices the input plan needs for amountOut and returns the full
// breakdown.
func (m *MegaRouteAggregator) QuoteReverse(ctx context.Context, plan domain.Plan, amountOut *uint256.Int) (*domain.Quote, error) {
	return m.observed(ctx, plan, amountOut, domain.DirectionReverse)
}

func (m *MegaRouteAggregator) observed(ctx context.Context, plan domain.Plan, amount *uint256.Int, dir domain.Direction) (*domain.Quote, error) {
	start := time.Now()
	q, err := m.quote(ctx, plan, amount, dir, true)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.QuoteRequests.WithLabelValues(string(dir), status).Inc()
	metrics.QuoteDuration.WithLabelValues(string(dir)).Observe(time.Since(start).Seconds())
	return q, err
}

func (m *MegaRouteAggregator) quote(ctx context.Context, plan domain.Plan, amount *uint256.Int, dir domain.Direction, breakdown bool) (*domain.Quote, error) {
	if amount == nil || amount.IsZero() {
		if dir == domain.DirectionForward {
			return nil, domain.Locate(domain.ErrZeroAmountIn)
		}
		return nil, domain.Locate(domain.ErrZeroAmount)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	parts, err := SplitByShares(amount, megaRouteShares(plan.MegaRoutes))
	if err != nil {
		return nil, domain.Locate(err)
	}

	q := &domain.Quote{
		Direction: dir,
		TokenIn:   plan.TokenIn(),
		TokenOut:  plan.TokenOut(),
	}
	if breakdown {
		if q.PlanHash, err = plan.FingerprintHex(); err != nil {
			return nil, domain.Locate(err)
		}
		q.Routes = make([]domain.RouteQuote, len(plan.MegaRoutes))
	}
	total := new(uint256.Int)
	for i, mr := range plan.MegaRoutes {
		if parts[i].IsZero() {
			if breakdown {
				q.Routes[i] = domain.RouteQuote{Shares: mr.Shares, AmountIn: new(uint256.Int), AmountOut: new(uint256.Int)}
			}
			continue
		}
		var rq *domain.RouteQuote
		if dir == domain.DirectionForward {
			rq, err = m.routes.forward(ctx, mr.Route, parts[i], breakdown)
		} else {
			rq, err = m.routes.reverse(ctx, mr.Route, parts[i], breakdown)
		}
		if err != nil {
			return nil, domain.AtMegaRoute(err, i)
		}
		rq.Shares = mr.Shares
		leg := rq.AmountOut
		if dir == domain.DirectionReverse {
			leg = rq.AmountIn
		}
		if _, overflow := total.AddOverflow(total, leg); overflow {
			return nil, domain.AtMegaRoute(domain.ErrArithmeticOverflow, i)
		}
		if breakdown {
			q.Routes[i] = *rq
		}
	}
	if dir == domain.DirectionForward {
		q.AmountIn, q.AmountOut = amount, total
	} else {
		q.AmountIn, q.AmountOut = total, amount
	}
	return q, nil
}
