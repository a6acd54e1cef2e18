package exchange

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

func key(b byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = 0x5E
	k[31] = b
	return k
}

var (
	tokA  = key(1)
	tokB  = key(2)
	tokC  = key(3)
	poolP = key(10)
	payer = key(20)
	recv  = key(21)
)

type memStore struct {
	pools   map[solana.PublicKey]*domain.PoolState
	applied int
}

func newMemStore(pools ...*domain.PoolState) *memStore {
	s := &memStore{pools: make(map[solana.PublicKey]*domain.PoolState)}
	for _, p := range pools {
		s.pools[p.Address] = p
	}
	return s
}

func (s *memStore) Pool(_ context.Context, address solana.PublicKey) (*domain.PoolState, error) {
	p, ok := s.pools[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPool, address)
	}
	return p.Clone(), nil
}

func (s *memStore) ApplySwap(_ context.Context, address, tokenIn solana.PublicKey, amountIn *uint256.Int, tokenOut solana.PublicKey, amountOut *uint256.Int) error {
	p := s.pools[address]
	i, j := p.IndexOf(tokenIn), p.IndexOf(tokenOut)
	p.Balances[i] = new(uint256.Int).Add(p.Balances[i], amountIn)
	p.Balances[j] = new(uint256.Int).Sub(p.Balances[j], amountOut)
	s.applied++
	return nil
}

type settleCall struct {
	payer, recipient solana.PublicKey
	in, out          uint64
}

type recordingSettlement struct {
	calls []settleCall
}

func (r *recordingSettlement) Settle(_ context.Context, payer, _ solana.PublicKey, amountIn *uint256.Int, recipient, _ solana.PublicKey, amountOut *uint256.Int) error {
	r.calls = append(r.calls, settleCall{payer: payer, recipient: recipient, in: amountIn.Uint64(), out: amountOut.Uint64()})
	return nil
}

func twoTokenPool(family domain.VenueFamily, balA, balB *uint256.Int, decA, decB uint8) *domain.PoolState {
	return &domain.PoolState{
		Address:       poolP,
		Family:        family,
		Tokens:        []solana.PublicKey{tokA, tokB},
		Balances:      []*uint256.Int{balA, balB},
		Decimals:      []uint8{decA, decB},
		Amplification: 100,
	}
}

func mustEncode(payload interface{}) domain.AncillaryData {
	data, err := EncodeAncillary(payload)
	if err != nil {
		panic(err)
	}
	return data
}

type fixedQuoter struct {
	out *uint256.Int
	in  *uint256.Int
}

func (q fixedQuoter) QuoteExactIn(context.Context, solana.PublicKey, solana.PublicKey, solana.PublicKey, *uint256.Int, uint32) (*uint256.Int, error) {
	return q.out, nil
}

func (q fixedQuoter) QuoteExactOut(context.Context, solana.PublicKey, solana.PublicKey, solana.PublicKey, *uint256.Int, uint32) (*uint256.Int, error) {
	return q.in, nil
}

type quoterMap map[domain.VenueID]Quoter

func (m quoterMap) QuoterFor(venue domain.VenueID) (Quoter, bool) {
	q, ok := m[venue]
	return q, ok
}
