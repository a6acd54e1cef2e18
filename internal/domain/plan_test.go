package domain

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = 0xAA
	k[31] = b
	return k
}

var (
	tokA = key(1)
	tokX = key(2)
	tokC = key(3)
)

func path(venue VenueID, in, out solana.PublicKey, shares uint64) Path {
	return Path{VenueID: venue, AncillaryData: AncillaryData{1, 1}, TokenIn: in, TokenOut: out, Shares: shares}
}

func twoHopPlan() Plan {
	viaX := Route{Hops: []HopGroup{
		{TargetToken: tokX, Paths: []Path{path(1, tokA, tokX, 1), path(2, tokA, tokX, 1)}},
		{TargetToken: tokC, Paths: []Path{path(3, tokX, tokC, 1), path(4, tokX, tokC, 1)}},
	}}
	direct := Route{Hops: []HopGroup{
		{TargetToken: tokC, Paths: []Path{path(5, tokA, tokC, 1), path(6, tokA, tokC, 1)}},
	}}
	return PlanFromMegaRoutes([]MegaRoute{{Shares: 1, Route: viaX}, {Shares: 1, Route: direct}})
}

func TestPlanValidate(t *testing.T) {
	plan := twoHopPlan()
	require.NoError(t, plan.Validate())
	assert.Equal(t, tokA, plan.TokenIn())
	assert.Equal(t, tokC, plan.TokenOut())
	assert.Equal(t, 2, plan.HopCount())
}

func TestPlanValidateErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *Plan)
		kind      error
		megaRoute int
		hop       int
		path      int
	}{
		{
			name:      "empty plan",
			mutate:    func(p *Plan) { p.MegaRoutes = nil },
			kind:      ErrEmptyPlan,
			megaRoute: -1, hop: -1, path: -1,
		},
		{
			name: "zero mega-route shares",
			mutate: func(p *Plan) {
				p.MegaRoutes[0].Shares = 0
				p.MegaRoutes[1].Shares = 0
			},
			kind:      ErrSumOfSharesMustBePositive,
			megaRoute: -1, hop: -1, path: -1,
		},
		{
			name: "zero hop shares",
			mutate: func(p *Plan) {
				p.MegaRoutes[0].Route.Hops[1].Paths[0].Shares = 0
				p.MegaRoutes[0].Route.Hops[1].Paths[1].Shares = 0
			},
			kind:      ErrSumOfSharesMustBePositive,
			megaRoute: 0, hop: 1, path: -1,
		},
		{
			name:      "path misses target",
			mutate:    func(p *Plan) { p.MegaRoutes[1].Route.Hops[0].Paths[1].TokenOut = tokX },
			kind:      ErrIncorrectPath,
			megaRoute: 1, hop: 0, path: 1,
		},
		{
			name: "hops do not chain",
			mutate: func(p *Plan) {
				p.MegaRoutes[0].Route.Hops[1].Paths[0].TokenIn = tokA
				p.MegaRoutes[0].Route.Hops[1].Paths[1].TokenIn = tokA
			},
			kind:      ErrIncorrectPath,
			megaRoute: 0, hop: 1, path: -1,
		},
		{
			name: "mega-routes end on different tokens",
			mutate: func(p *Plan) {
				p.MegaRoutes[1].Route.Hops[0].TargetToken = tokX
				p.MegaRoutes[1].Route.Hops[0].Paths[0].TokenOut = tokX
				p.MegaRoutes[1].Route.Hops[0].Paths[1].TokenOut = tokX
			},
			kind:      ErrIncorrectPath,
			megaRoute: 1, hop: -1, path: -1,
		},
		{
			name:      "empty route",
			mutate:    func(p *Plan) { p.MegaRoutes[1].Route.Hops = nil },
			kind:      ErrEmptyPlan,
			megaRoute: 1, hop: -1, path: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := twoHopPlan()
			tt.mutate(&plan)
			err := plan.Validate()
			require.ErrorIs(t, err, tt.kind)

			var pe *PlanError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.megaRoute, pe.MegaRoute)
			assert.Equal(t, tt.hop, pe.Hop)
			assert.Equal(t, tt.path, pe.Path)
		})
	}
}

func TestNativeAndWrappedChain(t *testing.T) {
	p := PlanFromRoute(Route{Hops: []HopGroup{
		{TargetToken: WrappedNativeMint, Paths: []Path{path(1, tokA, NativeMint, 1)}},
		{TargetToken: tokC, Paths: []Path{path(2, WrappedNativeMint, tokC, 1)}},
	}})
	assert.NoError(t, p.Validate())
}

func TestFingerprint(t *testing.T) {
	a, err := twoHopPlan().FingerprintHex()
	require.NoError(t, err)
	b, err := twoHopPlan().FingerprintHex()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)

	changed := twoHopPlan()
	changed.MegaRoutes[0].Shares = 2
	c, err := changed.FingerprintHex()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestDegenerateForms(t *testing.T) {
	p := path(7, tokA, tokC, 3)
	plan := PlanFromPath(p)
	require.Len(t, plan.MegaRoutes, 1)
	assert.Equal(t, uint64(1), plan.MegaRoutes[0].Shares)
	require.Len(t, plan.MegaRoutes[0].Route.Hops, 1)
	assert.Equal(t, tokC, plan.MegaRoutes[0].Route.Hops[0].TargetToken)
	assert.Equal(t, p, plan.MegaRoutes[0].Route.Hops[0].Paths[0])
}

func TestPlanSpecBuild(t *testing.T) {
	spec := PlanSpec{Path: &PathSpec{
		VenueID:       9,
		AncillaryData: AncillaryData{1, 1, 5}.String(),
		TokenIn:       "native",
		TokenOut:      tokC.String(),
	}}
	plan, err := spec.Build()
	require.NoError(t, err)
	got := plan.MegaRoutes[0].Route.Hops[0].Paths[0]
	assert.Equal(t, NativeMint, got.TokenIn)
	assert.Equal(t, uint64(1), got.Shares)
	assert.Equal(t, AncillaryData{1, 1, 5}, got.AncillaryData)

	_, err = PlanSpec{}.Build()
	assert.ErrorIs(t, err, ErrEmptyPlan)

	_, err = PlanSpec{Route: &RouteSpec{Hops: []HopGroupSpec{{
		TargetToken: tokC.String(),
		Paths:       []PathSpec{{VenueID: 1, TokenIn: "not-a-key", TokenOut: tokC.String(), Shares: 1}},
	}}}}.Build()
	assert.ErrorIs(t, err, ErrIncorrectPath)

	_, err = PlanSpec{Path: &PathSpec{AncillaryData: "0OIl", TokenIn: tokA.String(), TokenOut: tokC.String()}}.Build()
	assert.ErrorIs(t, err, ErrInvalidAncillaryData)
}

func TestPoolSpecRoundTrip(t *testing.T) {
	spec := PoolSpec{
		Address:  key(50).String(),
		Family:   "constant-product",
		Tokens:   []string{tokA.String(), "native"},
		Balances: []string{"1000", "2000"},
		Decimals: []uint8{6, 9},
	}
	st, err := spec.ToState()
	require.NoError(t, err)
	assert.Equal(t, FamilyConstantProduct, st.Family)
	assert.Equal(t, 1, st.IndexOf(WrappedNativeMint))
	assert.Equal(t, -1, st.IndexOf(tokX))

	back := SpecFromState(st)
	assert.Equal(t, spec.Tokens, back.Tokens)
	assert.Equal(t, spec.Balances, back.Balances)

	spec.Balances = spec.Balances[:1]
	_, err = spec.ToState()
	assert.ErrorIs(t, err, ErrInvalidPool)
}
