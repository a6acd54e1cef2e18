package domain

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

// PoolState is the balance sheet of an in-process venue pool.
type PoolState struct {
	Address       solana.PublicKey
	Family        VenueFamily
	Tokens        []solana.PublicKey
	Balances      []*uint256.Int
	Decimals      []uint8
	Amplification uint64
	UpdatedAt     int64
}

// IndexOf returns the position of token in the pool, or -1.
func (p *PoolState) IndexOf(token solana.PublicKey) int {
	for i, t := range p.Tokens {
		if SameToken(t, token) {
			return i
		}
	}
	return -1
}

func (p *PoolState) Validate() error {
	if len(p.Tokens) < 2 {
		return fmt.Errorf("%w: %s has %d tokens", ErrInvalidPool, p.Address, len(p.Tokens))
	}
	if len(p.Balances) != len(p.Tokens) || len(p.Decimals) != len(p.Tokens) {
		return fmt.Errorf("%w: %s tokens/balances/decimals length mismatch", ErrInvalidPool, p.Address)
	}
	for i, b := range p.Balances {
		if b == nil {
			return fmt.Errorf("%w: %s balance %d missing", ErrInvalidPool, p.Address, i)
		}
	}
	if p.Family == FamilyStableSwap && p.Amplification == 0 {
		return fmt.Errorf("%w: %s stable pool without amplification", ErrInvalidPool, p.Address)
	}
	return nil
}

func (p *PoolState) Clone() *PoolState {
	c := &PoolState{
		Address:       p.Address,
		Family:        p.Family,
		Tokens:        append([]solana.PublicKey(nil), p.Tokens...),
		Balances:      make([]*uint256.Int, len(p.Balances)),
		Decimals:      append([]uint8(nil), p.Decimals...),
		Amplification: p.Amplification,
		UpdatedAt:     p.UpdatedAt,
	}
	for i, b := range p.Balances {
		if b != nil {
			c.Balances[i] = new(uint256.Int).Set(b)
		}
	}
	return c
}

// PoolSpec is the wire and file form of a PoolState.
type PoolSpec struct {
	Address       string   `json:"address" yaml:"address"`
	Family        string   `json:"family" yaml:"family"`
	Tokens        []string `json:"tokens" yaml:"tokens"`
	Balances      []string `json:"balances" yaml:"balances"`
	Decimals      []uint8  `json:"decimals" yaml:"decimals"`
	Amplification uint64   `json:"amplification,omitempty" yaml:"amplification,omitempty"`
	UpdatedAt     int64    `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

func (s PoolSpec) ToState() (*PoolState, error) {
	addr, err := solana.PublicKeyFromBase58(s.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: address: %v", ErrInvalidPool, err)
	}
	family, err := ParseVenueFamily(s.Family)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPool, err)
	}
	st := &PoolState{
		Address:       addr,
		Family:        family,
		Tokens:        make([]solana.PublicKey, len(s.Tokens)),
		Balances:      make([]*uint256.Int, len(s.Balances)),
		Decimals:      append([]uint8(nil), s.Decimals...),
		Amplification: s.Amplification,
		UpdatedAt:     s.UpdatedAt,
	}
	for i, t := range s.Tokens {
		if st.Tokens[i], err = ParseToken(t); err != nil {
			return nil, fmt.Errorf("%w: token %d: %v", ErrInvalidPool, i, err)
		}
	}
	for i, b := range s.Balances {
		if st.Balances[i], err = uint256.FromDecimal(b); err != nil {
			return nil, fmt.Errorf("%w: balance %d: %v", ErrInvalidPool, i, err)
		}
	}
	if st.UpdatedAt == 0 {
		st.UpdatedAt = time.Now().Unix()
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

func SpecFromState(p *PoolState) PoolSpec {
	s := PoolSpec{
		Address:       p.Address.String(),
		Family:        p.Family.String(),
		Tokens:        make([]string, len(p.Tokens)),
		Balances:      make([]string, len(p.Balances)),
		Decimals:      append([]uint8(nil), p.Decimals...),
		Amplification: p.Amplification,
		UpdatedAt:     p.UpdatedAt,
	}
	for i, t := range p.Tokens {
		s.Tokens[i] = FormatToken(t)
	}
	for i, b := range p.Balances {
		s.Balances[i] = b.Dec()
	}
	return s
}
