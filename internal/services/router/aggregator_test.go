package router

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

func TestAmountEngineValidates(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	p := m.path(venueCP1, tokA, tokC, 1, 1)

	_, err := m.engine.Forward(ctx, p, new(uint256.Int))
	assert.ErrorIs(t, err, domain.ErrZeroAmount)
	_, err = m.engine.Reverse(ctx, p, nil)
	assert.ErrorIs(t, err, domain.ErrZeroAmount)

	p.VenueID = 99
	_, err = m.engine.Forward(ctx, p, uint256.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrUnknownVenue)
}

func TestConcreteScenario(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	plan := m.scenarioPlan()

	out, err := m.mega.AmountsOutByMegaRoutes(ctx, plan.MegaRoutes, units(100, 18))
	require.NoError(t, err)
	// Each of the four C-producing paths floors away less than one unit.
	assert.Equal(t, "99999996", out.Dec())

	in, err := m.mega.AmountInByMegaRoutes(ctx, plan.MegaRoutes, units(100, 6))
	require.NoError(t, err)
	hundred := units(100, 18)
	require.False(t, in.Lt(hundred), "reverse %s below 100e18", in.Dec())
	assert.True(t, new(uint256.Int).Sub(in, hundred).Cmp(uint256.NewInt(10_000_000)) <= 0, "reverse %s", in.Dec())

	back, err := m.mega.AmountInByMegaRoutes(ctx, plan.MegaRoutes, out)
	require.NoError(t, err)
	assert.False(t, back.Gt(hundred), "round trip %s > amountIn", back.Dec())
}

func TestRoundTripSinglePath(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	p := m.path(venueCP1, tokA, tokC, 1, 1)
	oneC := units(1, 12) // one unit of C expressed in A base units at 1:1

	for _, amount := range []*uint256.Int{units(1, 18), units(25, 18), units(12345, 15)} {
		out, err := m.engine.Forward(ctx, p, amount)
		require.NoError(t, err)
		in, err := m.engine.Reverse(ctx, p, out)
		require.NoError(t, err)
		require.False(t, in.Gt(amount), "reverse %s > %s", in.Dec(), amount.Dec())
		assert.True(t, new(uint256.Int).Sub(amount, in).Cmp(oneC) <= 0, "gap %s", new(uint256.Int).Sub(amount, in).Dec())
	}
}

func TestRoundTripTwoHopRoute(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	route := domain.Route{Hops: []domain.HopGroup{
		{TargetToken: tokX, Paths: []domain.Path{m.feePath(venueCP1, tokA, tokX, 1, 30)}},
		{TargetToken: tokC, Paths: []domain.Path{m.feePath(venueCP2, tokX, tokC, 2, 5)}},
	}}
	// each hop may lose at most one unit of C, valued in A base units
	tolerance := new(uint256.Int).Mul(uint256.NewInt(uint64(len(route.Hops))), units(1, 12))

	for _, amount := range []*uint256.Int{units(1, 18), units(25, 18), units(12345, 15), units(3, 13)} {
		out, err := m.routes.AmountsOutByRoute(ctx, route, amount)
		require.NoError(t, err)
		require.False(t, out.IsZero())
		in, err := m.routes.AmountsInByRoute(ctx, route, out)
		require.NoError(t, err)
		require.False(t, in.Gt(amount), "reverse %s > %s", in.Dec(), amount.Dec())
		gap := new(uint256.Int).Sub(amount, in)
		assert.True(t, gap.Cmp(tolerance) <= 0, "gap %s for %s", gap.Dec(), amount.Dec())
	}
}

func TestShareAdditivity(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	hop := m.splitHop(tokA, tokC)
	amount := units(50, 18)
	half := units(25, 18)

	got, err := m.routes.AmountsOutByRoute(ctx, domain.Route{Hops: []domain.HopGroup{hop}}, amount)
	require.NoError(t, err)

	first, err := m.engine.Forward(ctx, hop.Paths[0], half)
	require.NoError(t, err)
	second, err := m.engine.Forward(ctx, hop.Paths[1], half)
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int).Add(first, second), got)
}

func TestDegenerateEquivalence(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	p := m.path(venueCP2, tokX, tokC, 2, 1)
	x := units(7, 18)

	viaPath, err := m.engine.Forward(ctx, p, x)
	require.NoError(t, err)
	route := domain.SingleHopRoute(p)
	viaRoute, err := m.routes.AmountsOutByRoute(ctx, route, x)
	require.NoError(t, err)
	viaMega, err := m.mega.AmountsOutByMegaRoutes(ctx, []domain.MegaRoute{{Shares: 1, Route: route}}, x)
	require.NoError(t, err)
	q, err := m.mega.QuoteForward(ctx, domain.PlanFromPath(p), x)
	require.NoError(t, err)

	assert.Equal(t, viaPath, viaRoute)
	assert.Equal(t, viaPath, viaMega)
	assert.Equal(t, viaPath, q.AmountOut)
}

func TestQuoteBreakdown(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	plan := m.scenarioPlan()

	fwd, err := m.mega.QuoteForward(ctx, plan, units(100, 18))
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionForward, fwd.Direction)
	assert.NotEmpty(t, fwd.PlanHash)
	assert.Equal(t, tokA, fwd.TokenIn)
	assert.Equal(t, tokC, fwd.TokenOut)
	require.Len(t, fwd.Routes, 2)
	require.Len(t, fwd.Routes[0].Hops, 2)
	require.Len(t, fwd.Routes[1].Hops, 1)

	leg := fwd.Routes[1].Hops[0].Paths[0]
	assert.Equal(t, units(25, 18), leg.AmountIn)
	assert.Equal(t, "24999999", leg.AmountOut.Dec())
	assert.Equal(t, units(25, 18), leg.AmountInWad)
	assert.Equal(t, "24999999000000000000", leg.AmountOutWad.Dec())
	assert.True(t, leg.PriceWad.Lt(units(1, 18)))
	assert.Equal(t, domain.FamilyConstantProduct, leg.Family)

	sum := new(uint256.Int)
	for _, r := range fwd.Routes {
		sum.Add(sum, r.AmountOut)
	}
	assert.Equal(t, fwd.AmountOut, sum)

	rev, err := m.mega.QuoteReverse(ctx, plan, units(100, 6))
	require.NoError(t, err)
	assert.Equal(t, fwd.PlanHash, rev.PlanHash)
	assert.Equal(t, units(100, 6), rev.AmountOut)
	assert.Equal(t, rev.Routes[0].AmountIn, rev.Routes[0].Hops[0].AmountIn)
}

func TestBreakdownOfSubWadInput(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	m.tokens.SetDecimals(tokA, 24)
	route := domain.Route{Hops: []domain.HopGroup{{TargetToken: tokX, Paths: []domain.Path{m.path(venueCP1, tokA, tokX, 1, 1)}}}}

	plan := domain.PlanFromMegaRoutes([]domain.MegaRoute{{Shares: 1, Route: route}})

	q, err := m.mega.QuoteForward(ctx, plan, uint256.NewInt(1000))
	require.NoError(t, err)
	leg := q.Routes[0].Hops[0].Paths[0]
	assert.Equal(t, "999", leg.AmountOut.Dec())
	assert.True(t, leg.AmountInWad.IsZero())
	assert.Equal(t, "999", leg.AmountOutWad.Dec())
	assert.Nil(t, leg.PriceWad)
	assert.Empty(t, q.View().Routes[0].Hops[0].Paths[0].PriceWad)
}

func TestZeroSharePathIsSkipped(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	hop := m.splitHop(tokA, tokC)
	hop.Paths[1].Shares = 0
	hop.Paths[1].VenueID = 99

	q, err := m.mega.QuoteForward(ctx, domain.PlanFromRoute(domain.Route{Hops: []domain.HopGroup{hop}}), units(10, 18))
	require.NoError(t, err)
	paths := q.Routes[0].Hops[0].Paths
	assert.False(t, paths[0].Skipped)
	assert.True(t, paths[1].Skipped)
	assert.True(t, paths[1].AmountOut.IsZero())
}

func TestErrorsCarryLocation(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	plan := m.scenarioPlan()
	plan.MegaRoutes[1].Route.Hops[0].Paths[1].VenueID = 99

	_, err := m.mega.QuoteForward(ctx, plan, units(100, 18))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownVenue)
	var pe *domain.PlanError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.MegaRoute)
	assert.Equal(t, 0, pe.Hop)
	assert.Equal(t, 1, pe.Path)

	_, err = m.mega.QuoteForward(ctx, plan, new(uint256.Int))
	assert.ErrorIs(t, err, domain.ErrZeroAmountIn)

	bad := m.scenarioPlan()
	for i := range bad.MegaRoutes[0].Route.Hops[1].Paths {
		bad.MegaRoutes[0].Route.Hops[1].Paths[i].Shares = 0
	}
	_, err = m.mega.QuoteReverse(ctx, bad, units(1, 6))
	assert.ErrorIs(t, err, domain.ErrSumOfSharesMustBePositive)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 0, pe.MegaRoute)
	assert.Equal(t, 1, pe.Hop)

	_, err = m.routes.AmountsInByRoute(ctx, bad.MegaRoutes[0].Route, units(1, 6))
	assert.ErrorIs(t, err, domain.ErrSumOfSharesMustBePositive)
}

func TestQuotesAreDeterministic(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	plan := m.scenarioPlan()

	a, err := m.mega.QuoteForward(ctx, plan, units(3, 18))
	require.NoError(t, err)
	b, err := m.mega.QuoteForward(ctx, plan, units(3, 18))
	require.NoError(t, err)
	assert.Equal(t, a.View(), b.View())
}

func BenchmarkQuoteForwardScenario(b *testing.B) {
	ctx := context.Background()
	m := newTestMarket()
	plan := m.scenarioPlan()
	amount := units(100, 18)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = m.mega.AmountsOutByMegaRoutes(ctx, plan.MegaRoutes, amount)
	}
}
