package router

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/services/exchange"
	"github.com/hxuan190/route-aggregator/internal/services/market"
)

func key(b byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = 0x7A
	k[31] = b
	return k
}

var (
	tokA    = key(1)
	tokX    = key(2)
	tokC    = key(3)
	payer   = key(40)
	recv    = key(41)
	custody = key(42)
)

const (
	venueCP1 domain.VenueID = 1
	venueCP2 domain.VenueID = 2
)

func units(n uint64, decimals uint8) *uint256.Int {
	v := uint256.NewInt(n)
	for i := uint8(0); i < decimals; i++ {
		v.Mul(v, uint256.NewInt(10))
	}
	return v
}

type memPools struct {
	pools map[solana.PublicKey]*domain.PoolState
}

func (s *memPools) Pool(_ context.Context, address solana.PublicKey) (*domain.PoolState, error) {
	p, ok := s.pools[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPool, address)
	}
	return p.Clone(), nil
}

func (s *memPools) ApplySwap(_ context.Context, address, tokenIn solana.PublicKey, amountIn *uint256.Int, tokenOut solana.PublicKey, amountOut *uint256.Int) error {
	p := s.pools[address]
	i, j := p.IndexOf(tokenIn), p.IndexOf(tokenOut)
	p.Balances[i] = new(uint256.Int).Add(p.Balances[i], amountIn)
	p.Balances[j] = new(uint256.Int).Sub(p.Balances[j], amountOut)
	return nil
}

// countingResolver counts adapter resolutions so tests can assert that no
// venue was touched.
type countingResolver struct {
	inner AdapterResolver
	calls atomic.Int64
}

func (r *countingResolver) Resolve(id domain.VenueID) (exchange.Adapter, error) {
	r.calls.Add(1)
	return r.inner.Resolve(id)
}

type transfer struct {
	token, account solana.PublicKey
	amount         string
}

type spyVault struct {
	in, out []transfer
}

func (v *spyVault) TransferIn(_ context.Context, token, from solana.PublicKey, amount *uint256.Int) error {
	v.in = append(v.in, transfer{token, from, amount.Dec()})
	return nil
}

func (v *spyVault) TransferOut(_ context.Context, token, to solana.PublicKey, amount *uint256.Int) error {
	v.out = append(v.out, transfer{token, to, amount.Dec()})
	return nil
}

type spyWrapper struct {
	wrapped, unwrapped []string
}

func (w *spyWrapper) Wrap(_ context.Context, _ solana.PublicKey, amount *uint256.Int) error {
	w.wrapped = append(w.wrapped, amount.Dec())
	return nil
}

func (w *spyWrapper) Unwrap(_ context.Context, _ solana.PublicKey, amount *uint256.Int) error {
	w.unwrapped = append(w.unwrapped, amount.Dec())
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// testMarket is the concrete scenario: A (18 decimals), X (18) and C (6) trade
// 1:1 through deep zero-fee constant-product pools, two per pair.
type testMarket struct {
	pools    *memPools
	venues   *countingResolver
	tokens   *market.TokenRegistry
	engine   *AmountEngine
	routes   *RouteAggregator
	mega     *MegaRouteAggregator
	poolKeys map[string]solana.PublicKey
}

func newTestMarket() *testMarket {
	m := &testMarket{
		pools:    &memPools{pools: make(map[solana.PublicKey]*domain.PoolState)},
		poolKeys: make(map[string]solana.PublicKey),
	}
	reg := market.NewVenueRegistry()
	if err := reg.Register(venueCP1, "cp-one", exchange.NewConstantProductAdapter(m.pools, nil)); err != nil {
		panic(err)
	}
	if err := reg.Register(venueCP2, "cp-two", exchange.NewConstantProductAdapter(m.pools, nil)); err != nil {
		panic(err)
	}
	m.venues = &countingResolver{inner: reg}
	m.tokens = market.NewTokenRegistry(16, nil)
	m.tokens.SetDecimals(tokA, 18)
	m.tokens.SetDecimals(tokX, 18)
	m.tokens.SetDecimals(tokC, 6)
	m.engine = NewAmountEngine(m.venues, m.tokens)
	m.routes = NewRouteAggregator(m.engine)
	m.mega = NewMegaRouteAggregator(m.routes)

	const depth = 1_000_000_000_000_000
	seq := byte(100)
	decimals := map[solana.PublicKey]uint8{tokA: 18, tokX: 18, tokC: 6, domain.WrappedNativeMint: 9}
	for _, pair := range [][2]solana.PublicKey{{tokA, tokX}, {tokX, tokC}, {tokA, tokC}, {domain.WrappedNativeMint, tokC}} {
		for n := 1; n <= 2; n++ {
			seq++
			addr := key(seq)
			m.pools.pools[addr] = &domain.PoolState{
				Address:  addr,
				Family:   domain.FamilyConstantProduct,
				Tokens:   []solana.PublicKey{pair[0], pair[1]},
				Balances: []*uint256.Int{units(depth, decimals[pair[0]]), units(depth, decimals[pair[1]])},
				Decimals: []uint8{decimals[pair[0]], decimals[pair[1]]},
			}
			m.poolKeys[fmt.Sprintf("%s/%s#%d", pair[0], pair[1], n)] = addr
		}
	}
	return m
}

func (m *testMarket) path(venue domain.VenueID, in, out solana.PublicKey, n int, shares uint64) domain.Path {
	pool, ok := m.poolKeys[fmt.Sprintf("%s/%s#%d", domain.WrapIfNative(in), domain.WrapIfNative(out), n)]
	if !ok {
		pool = m.poolKeys[fmt.Sprintf("%s/%s#%d", domain.WrapIfNative(out), domain.WrapIfNative(in), n)]
	}
	data, err := exchange.EncodeAncillary(exchange.ConstantProductData{Pool: pool})
	if err != nil {
		panic(err)
	}
	return domain.Path{VenueID: venue, AncillaryData: data, TokenIn: in, TokenOut: out, Shares: shares}
}

// feePath is a single-share path through pool n that charges feeBps.
func (m *testMarket) feePath(venue domain.VenueID, in, out solana.PublicKey, n int, feeBps uint16) domain.Path {
	p := m.path(venue, in, out, n, 1)
	var cp exchange.ConstantProductData
	if err := exchange.DecodeAncillary(p.AncillaryData, &cp); err != nil {
		panic(err)
	}
	cp.FeeBps = feeBps
	data, err := exchange.EncodeAncillary(cp)
	if err != nil {
		panic(err)
	}
	p.AncillaryData = data
	return p
}

func (m *testMarket) splitHop(in, out solana.PublicKey) domain.HopGroup {
	return domain.HopGroup{TargetToken: out, Paths: []domain.Path{
		m.path(venueCP1, in, out, 1, 1),
		m.path(venueCP2, in, out, 2, 1),
	}}
}

// scenarioPlan routes A->C half through X and half directly, each hop split
// evenly across two venues.
func (m *testMarket) scenarioPlan() domain.Plan {
	viaX := domain.Route{Hops: []domain.HopGroup{m.splitHop(tokA, tokX), m.splitHop(tokX, tokC)}}
	direct := domain.Route{Hops: []domain.HopGroup{m.splitHop(tokA, tokC)}}
	return domain.PlanFromMegaRoutes([]domain.MegaRoute{{Shares: 1, Route: viaX}, {Shares: 1, Route: direct}})
}

func (m *testMarket) executor(clock Clock, vault TokenVault, wrapper NativeWrapper) *SwapExecutor {
	return NewSwapExecutor(m.engine, clock, vault, wrapper, custody)
}
